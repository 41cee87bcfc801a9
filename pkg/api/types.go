package api

// User is a person who can join groups.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
}

// Group is a set of members sharing expenses. Members are user IDs in join order.
type Group struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Members   []string `json:"members"`
	CreatedAt int64    `json:"createdAt"`
}

// Transaction is an expense paid by one member.
type Transaction struct {
	ID        string `json:"id"`
	GroupID   string `json:"groupId"`
	PayerID   string `json:"payerId"`
	Title     string `json:"title"`
	Amount    string `json:"amount"`
	CreatedAt int64  `json:"createdAt"`
}

// Settlement is a payment that raised a member's balance.
type Settlement struct {
	ID        string `json:"id"`
	GroupID   string `json:"groupId"`
	UserID    string `json:"userId"`
	Amount    string `json:"amount"`
	Strategy  string `json:"strategy"`
	BatchID   string `json:"batchId"`
	CreatedBy string `json:"createdBy"`
	CreatedAt int64  `json:"createdAt"`
}

// MemberBalance is one member's position in a group.
// A positive Balance means the member is owed money.
type MemberBalance struct {
	UserID  string `json:"userId"`
	Name    string `json:"name"`
	Paid    string `json:"paid"`
	Share   string `json:"share"`
	Settled string `json:"settled"`
	Balance string `json:"balance"`
}

// Transfer is a suggested payment that would reduce outstanding balances.
type Transfer struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}
