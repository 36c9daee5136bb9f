package domain

// Status is the lifecycle state of a document.
type Status string

const (
	StatusDraft         Status = "draft"
	StatusOpen          Status = "open"
	StatusPartiallyPaid Status = "partially_paid"
	StatusPaid          Status = "paid"
	StatusVoid          Status = "void"

	StatusIssued   Status = "issued"
	StatusReceived Status = "received"
	StatusBilled   Status = "billed"
)

// Action is a requested lifecycle operation.
type Action string

const (
	ActionOpen          Action = "open"
	ActionRecordPayment Action = "record_payment"
	ActionVoid          Action = "void"
	ActionIssue         Action = "issue"
	ActionReceive       Action = "receive"
	ActionConvertToBill Action = "convert_to_bill"
)

// transitions lists the actions legal in each state per document type.
// Absent (state, action) pairs are illegal; a payment recorded against a
// paid or void document therefore fails instead of silently accepting.
var transitions = map[DocumentType]map[Status][]Action{
	DocumentTypeBill: {
		StatusDraft:         {ActionOpen, ActionVoid},
		StatusOpen:          {ActionRecordPayment, ActionVoid},
		StatusPartiallyPaid: {ActionRecordPayment, ActionVoid},
		StatusPaid:          {},
		StatusVoid:          {},
	},
	DocumentTypePurchaseOrder: {
		StatusDraft:    {ActionIssue, ActionVoid},
		StatusIssued:   {ActionReceive, ActionConvertToBill, ActionVoid},
		StatusReceived: {ActionConvertToBill, ActionVoid},
		StatusBilled:   {},
		StatusVoid:     {},
	},
}

// InitialStatus is the state of every freshly created document.
const InitialStatus = StatusDraft

// CanApply reports whether action is legal for a document of the given type
// in the given state. Violations return a *TransitionError.
func CanApply(docType DocumentType, status Status, action Action) error {
	states, ok := transitions[docType]
	if !ok {
		return &TransitionError{DocumentType: docType, From: status, Action: action}
	}
	allowed, ok := states[status]
	if !ok {
		return &TransitionError{DocumentType: docType, From: status, Action: action}
	}
	for _, candidate := range allowed {
		if candidate == action {
			return nil
		}
	}
	return &TransitionError{DocumentType: docType, From: status, Action: action}
}

// IsTerminal reports whether no action can ever leave the state.
func IsTerminal(docType DocumentType, status Status) bool {
	states, ok := transitions[docType]
	if !ok {
		return false
	}
	allowed, ok := states[status]
	return ok && len(allowed) == 0
}

// KnownStatus reports whether the status belongs to the document type.
// Unknown states are rejected at the boundary instead of rendered through.
func KnownStatus(docType DocumentType, status Status) bool {
	states, ok := transitions[docType]
	if !ok {
		return false
	}
	_, ok = states[status]
	return ok
}
