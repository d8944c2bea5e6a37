package entity

// OutcomeKind は1回のログイン試行に対するリゾルバーの判定です。
type OutcomeKind string

const (
	OutcomeAuthenticated OutcomeKind = "authenticated"
	OutcomeCreated       OutcomeKind = "created"
	OutcomeLinked        OutcomeKind = "linked"
	OutcomeRejected      OutcomeKind = "rejected"
)

// RejectReason explains a rejected outcome.
type RejectReason string

const (
	ReasonInvalidCredentials RejectReason = "invalid_credentials"
	ReasonInvalidToken       RejectReason = "invalid_or_unverified_token"
	ReasonMalformedRequest   RejectReason = "malformed_request"
)

// AuthOutcome is the result of a login attempt. User is set for every kind except OutcomeRejected,
// Reason only for OutcomeRejected.
type AuthOutcome struct {
	Kind   OutcomeKind
	User   *User
	Reason RejectReason
}

func Authenticated(u *User) AuthOutcome { return AuthOutcome{Kind: OutcomeAuthenticated, User: u} }

func Created(u *User) AuthOutcome { return AuthOutcome{Kind: OutcomeCreated, User: u} }

func Linked(u *User) AuthOutcome { return AuthOutcome{Kind: OutcomeLinked, User: u} }

func Rejected(reason RejectReason) AuthOutcome {
	return AuthOutcome{Kind: OutcomeRejected, Reason: reason}
}

// IsRejected reports whether the attempt was refused.
func (o AuthOutcome) IsRejected() bool {
	return o.Kind == OutcomeRejected
}
