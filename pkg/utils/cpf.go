package utils

// NormalizeCPF strips everything but digits from a CPF string.
func NormalizeCPF(cpf string) string {
	out := make([]byte, 0, 11)
	for i := 0; i < len(cpf); i++ {
		if cpf[i] >= '0' && cpf[i] <= '9' {
			out = append(out, cpf[i])
		}
	}
	return string(out)
}

// ValidCPF checks the CPF check digits. Expects a normalized 11-digit string.
func ValidCPF(cpf string) bool {
	if len(cpf) != 11 {
		return false
	}
	allSame := true
	for i := 1; i < 11; i++ {
		if cpf[i] != cpf[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return false
	}
	digit := func(i int) int { return int(cpf[i] - '0') }

	sum := 0
	for i := 0; i < 9; i++ {
		sum += digit(i) * (10 - i)
	}
	check := (sum * 10) % 11 % 10
	if check != digit(9) {
		return false
	}

	sum = 0
	for i := 0; i < 10; i++ {
		sum += digit(i) * (11 - i)
	}
	check = (sum * 10) % 11 % 10
	return check == digit(10)
}
