package core

// Effect is the signed balance delta a transaction implies on one account
// while it is paid.
type Effect struct {
	AccountID int64
	Cents     int64
}

// Effects returns the balance deltas the transaction currently implies.
// An unpaid transaction contributes nothing regardless of type. A transfer
// yields two effects; every other type yields one.
func (t Transaction) Effects() []Effect {
	if t.Status != StatusPaid {
		return nil
	}
	switch t.Type {
	case TypeIncome:
		return []Effect{{AccountID: t.AccountID, Cents: t.Amount.Cents}}
	case TypeExpense, TypeDue:
		return []Effect{{AccountID: t.AccountID, Cents: -t.Amount.Cents}}
	case TypeTransfer:
		if t.ToAccountID == nil {
			return nil
		}
		return []Effect{
			{AccountID: t.AccountID, Cents: -t.Amount.Cents},
			{AccountID: *t.ToAccountID, Cents: t.Amount.Cents},
		}
	}
	return nil
}

// InverseEffects returns the deltas that exactly roll back Effects.
func (t Transaction) InverseEffects() []Effect {
	effects := t.Effects()
	inverse := make([]Effect, len(effects))
	for i, e := range effects {
		inverse[i] = Effect{AccountID: e.AccountID, Cents: -e.Cents}
	}
	return inverse
}
