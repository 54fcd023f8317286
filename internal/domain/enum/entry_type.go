package enum

// EntryType is the direction of a personal ledger entry
type EntryType string

const (
	EntryTypeIncome  EntryType = "income"
	EntryTypeExpense EntryType = "expense"
)

// IsValid checks if the entry type is known
func (t EntryType) IsValid() bool {
	return t == EntryTypeIncome || t == EntryTypeExpense
}

// String returns the string representation
func (t EntryType) String() string {
	return string(t)
}
