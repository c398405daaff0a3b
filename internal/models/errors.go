package models

import (
	"fmt"
	"strings"
	"time"
)

// ErrorKind classifies a domain-rule violation. Handlers map kinds to HTTP
// statuses; callers can react without parsing messages.
type ErrorKind string

const (
	ErrEventNotFound     ErrorKind = "EVENT_NOT_FOUND"
	ErrPeriodNotStarted  ErrorKind = "PERIOD_NOT_STARTED"
	ErrPeriodClosed      ErrorKind = "PERIOD_CLOSED"
	ErrVotingNotReleased ErrorKind = "VOTING_NOT_RELEASED"
	ErrInvalidOption     ErrorKind = "INVALID_OPTION"
	ErrTooManySelections ErrorKind = "TOO_MANY_SELECTIONS"
	ErrNotAParticipant   ErrorKind = "NOT_A_PARTICIPANT"
	ErrPresenceRequired  ErrorKind = "PRESENCE_REQUIRED"
	ErrAlreadyVoted      ErrorKind = "ALREADY_VOTED"
	ErrInvalidTransition ErrorKind = "INVALID_TRANSITION"
	ErrEventHasVotes     ErrorKind = "EVENT_HAS_VOTES"
	ErrInternal          ErrorKind = "INTERNAL"
)

// DomainError is a domain-rule violation with a user-facing message.
// It is always recovered at the operation boundary, never bubbled raw.
type DomainError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *DomainError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// IsKind reports whether err is a DomainError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	de, ok := err.(*DomainError)
	return ok && de.Kind == kind
}

// NewDomainError builds a DomainError with a preformatted message.
func NewDomainError(kind ErrorKind, message string) *DomainError {
	return &DomainError{Kind: kind, Message: message}
}

// EventNotFound reports a missing event.
func EventNotFound() *DomainError {
	return &DomainError{Kind: ErrEventNotFound, Message: "Evento não encontrado"}
}

// PeriodNotStarted reports an operation before the event window opens.
func PeriodNotStarted(startsAt time.Time) *DomainError {
	return &DomainError{
		Kind:    ErrPeriodNotStarted,
		Message: "Evento ainda não iniciou. Data de início: " + startsAt.Format("02/01/2006 15:04"),
	}
}

// PeriodClosed reports an operation after the event window ends.
func PeriodClosed(endsAt time.Time) *DomainError {
	return &DomainError{
		Kind:    ErrPeriodClosed,
		Message: "Evento já encerrou. Data de fim: " + endsAt.Format("02/01/2006 15:04"),
	}
}

// VotingNotReleased reports a ballot against a non-ATIVO event.
func VotingNotReleased() *DomainError {
	return &DomainError{Kind: ErrVotingNotReleased, Message: "Evento não está liberado para votação"}
}

// InvalidOption names the offending label and enumerates the valid options.
func InvalidOption(label string, valid []string) *DomainError {
	return &DomainError{
		Kind:    ErrInvalidOption,
		Message: fmt.Sprintf("Opção de voto inválida: %q. Opções válidas: %s", label, strings.Join(valid, ", ")),
	}
}

// EmptySelection reports a ballot with no selections.
func EmptySelection() *DomainError {
	return &DomainError{Kind: ErrInvalidOption, Message: "Nenhuma opção de voto informada"}
}

// DuplicateSelection reports a repeated label within one ballot.
func DuplicateSelection(label string) *DomainError {
	return &DomainError{Kind: ErrInvalidOption, Message: fmt.Sprintf("Opção repetida na cédula: %q", label)}
}

// TooManySelections reports a ballot above the selection limit.
func TooManySelections(got, max int) *DomainError {
	return &DomainError{
		Kind:    ErrTooManySelections,
		Message: fmt.Sprintf("Número de seleções excede o permitido: %d enviadas, máximo %d", got, max),
	}
}

// NotAParticipant reports a caller without a participation record.
func NotAParticipant() *DomainError {
	return &DomainError{Kind: ErrNotAParticipant, Message: "Você não está cadastrado neste evento"}
}

// PresenceRequired reports a ballot from an enrolled but absent participant.
func PresenceRequired() *DomainError {
	return &DomainError{Kind: ErrPresenceRequired, Message: "Você precisa confirmar presença antes de votar"}
}

// AlreadyVoted names whoever already voted for the municipality.
func AlreadyVoted(voterName string) *DomainError {
	if voterName == "" {
		return &DomainError{Kind: ErrAlreadyVoted, Message: "O seu município já votou neste evento"}
	}
	return &DomainError{
		Kind:    ErrAlreadyVoted,
		Message: fmt.Sprintf("O seu município já votou neste evento (voto registrado por %s)", voterName),
	}
}

// InvalidTransition reports a lifecycle move from the wrong status.
func InvalidTransition(from EventStatus, action string) *DomainError {
	return &DomainError{
		Kind:    ErrInvalidTransition,
		Message: fmt.Sprintf("Evento em status %s não permite a operação %s", from, action),
	}
}

// EventHasVotes blocks deleting an event with recorded votes.
func EventHasVotes() *DomainError {
	return &DomainError{Kind: ErrEventHasVotes, Message: "Evento possui votos registrados e não pode ser excluído"}
}

// Internal wraps an unexpected failure without leaking its cause.
func Internal() *DomainError {
	return &DomainError{Kind: ErrInternal, Message: "Erro interno do servidor"}
}
