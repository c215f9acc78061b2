package iso7816

// TRANSACTION / TRACE:
// A Transaction is one C-APDU and the R-APDU that answered it. A Trace is the
// ordered list of transactions needed to complete one logical command, which
// can be more than one when the card answers '61XX' (GET RESPONSE needed) or
// '6CXX' (re-send with Le = XX).

// Transaction represents a completed Command-Response pair.
type Transaction struct {
	Command  *CommandAPDU
	Response *ResponseAPDU
}

// IsSuccess checks if the transaction ended with a successful status.
// It returns false if the response is missing.
func (t *Transaction) IsSuccess() bool {
	if t.Response == nil {
		return false
	}
	return t.Response.Status.IsSuccess()
}

// Trace is a sequence of transactions (Command-Response pairs).
type Trace []Transaction

// Last returns the final transaction of the trace, nil for an empty trace.
func (t Trace) Last() *Transaction {
	if len(t) == 0 {
		return nil
	}
	return &t[len(t)-1]
}

// IsSuccess checks if the FINAL transaction in the trace was successful.
func (t Trace) IsSuccess() bool {
	last := t.Last()
	if last == nil {
		return false
	}
	return last.IsSuccess()
}

// Status returns the status word of the final response, 0 if there is none.
func (t Trace) Status() StatusWord {
	last := t.Last()
	if last == nil || last.Response == nil {
		return 0
	}
	return last.Response.Status
}

// Completed reports whether the final response carried exactly '9000'.
// EMV processing treats anything else, warnings included, as "no data".
func (t Trace) Completed() bool {
	return t.Status() == SW_NO_ERROR
}

// Data returns the data field of the final response.
func (t Trace) Data() []byte {
	last := t.Last()
	if last == nil || last.Response == nil {
		return nil
	}
	return last.Response.Data
}
