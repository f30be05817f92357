package billing

// Balance is a member's outstanding debt and held credit. After any
// reconciliation at most one of the two fields is positive.
type Balance struct {
	Pending int64
	Credit  int64
}

// Reconcile applies a credited payment against a member's outstanding
// requirement: the carried pending balance when one exists, otherwise
// the regular due. Held credit is consumed together with the payment;
// any surplus is kept as credit, any shortfall stays pending. A member
// carrying debt from prior months must clear it fully before any
// excess turns into credit.
func Reconcile(prior Balance, credited, due int64) Balance {
	outstanding := due
	if prior.Pending > 0 {
		outstanding = prior.Pending
	}
	available := credited + prior.Credit
	if available >= outstanding {
		return Balance{Pending: 0, Credit: available - outstanding}
	}
	return Balance{Pending: outstanding - available, Credit: 0}
}
