// Package budget classifies the month's spending against the monthly budget.
package budget

import "kharcha/internal/core"

type Status string

const (
	StatusUnset       Status = "unset"
	StatusNoSpending  Status = "no spending"
	StatusWithin      Status = "within budget"
	StatusApproaching Status = "approaching limit"
	StatusNear        Status = "near limit"
	StatusExceeded    Status = "exceeded"
)

var messages = map[Status]string{
	StatusUnset:       "Set a budget in Settings to track usage.",
	StatusNoSpending:  "No spending yet this month.",
	StatusWithin:      "You’re well within your budget.",
	StatusApproaching: "Caution: You’re approaching your budget limit.",
	StatusNear:        "Warning: You’re very close to your budget limit.",
	StatusExceeded:    "Budget exceeded! Review your expenses.",
}

// Message is the sentence shown next to the progress bar.
func (s Status) Message() string {
	return messages[s]
}

type Report struct {
	Status    Status     `json:"status"`
	Message   string     `json:"message"`
	Spent     core.Money `json:"spent"`
	Budget    core.Money `json:"budget"`
	Remaining core.Money `json:"remaining"`
	Progress  float64    `json:"progress"`
}

// Classify places spent against limit into a status band.
// Bands use the uncapped ratio: <0.5, <0.9, <=1.0, >1.0.
func Classify(spent, limit core.Money) Status {
	s, b := spent.Cents, limit.Cents
	switch {
	case b <= 0:
		return StatusUnset
	case s <= 0:
		return StatusNoSpending
	case 2*s < b:
		return StatusWithin
	case 10*s < 9*b:
		return StatusApproaching
	case s <= b:
		return StatusNear
	default:
		return StatusExceeded
	}
}

// Progress is min(spent/limit, 1), or 0 without a budget.
func Progress(spent, limit core.Money) float64 {
	if limit.Cents <= 0 {
		return 0
	}
	return min(float64(spent.Cents)/float64(limit.Cents), 1)
}

func Evaluate(spent, limit core.Money) Report {
	status := Classify(spent, limit)
	r := Report{
		Status:   status,
		Message:  status.Message(),
		Spent:    spent,
		Budget:   limit,
		Progress: Progress(spent, limit),
	}
	if limit.Cents > 0 {
		r.Remaining = limit.Sub(spent)
	}
	return r
}
