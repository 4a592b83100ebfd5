package domain

type CtxKey string

const (
	KeyAdminID    CtxKey = "AdminID"
	KeyAdminEmail CtxKey = "Email"
	KeyEditTicket CtxKey = "EditTicketCandidateID"
)
