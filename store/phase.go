package store

import "github.com/matiasbn/Lucky7Bot/data"

// Phase is where a user stands in the ticket cycle
type Phase int

const (
	Empty Phase = iota
	ParamsPending
	ParamsReady
	TicketPending
	TicketIssued
)

func (p Phase) String() string {
	switch p {
	case Empty:
		return "empty"
	case ParamsPending:
		return "params-pending"
	case ParamsReady:
		return "params-ready"
	case TicketPending:
		return "ticket-pending"
	case TicketIssued:
		return "ticket-issued"
	}

	return "unknown"
}

// Pending reports whether the phase waits on the oracle
func (p Phase) Pending() bool {
	return p == ParamsPending || p == TicketPending
}

// derivePhase places values read from the chain in the cycle. The chain does
// not tell whether ready parameters were generated after the current ticket,
// so the previous phase breaks the tie.
func derivePhase(values data.UserParameters, previous Phase) Phase {
	if values.UserPaidTicket {
		return TicketPending
	}

	if !values.MuReady || !values.IReady {
		if isEmpty(values) {
			return Empty
		}
		return ParamsPending
	}

	if values.TicketValue != 0 && previous != ParamsPending && previous != ParamsReady {
		return TicketIssued
	}

	return ParamsReady
}

func isEmpty(values data.UserParameters) bool {
	return values.MuParameter == "" && values.IParameter == "" && values.TicketValue == 0 &&
		!values.MuReady && !values.IReady && !values.UserPaidTicket
}
