package domain

// CustomerSecrets groups one customer with its secrets that fall inside
// the notification window. Built fresh for every run; never persisted.
type CustomerSecrets struct {
	Customer Customer `json:"customer"`
	Secrets  []Secret `json:"secrets"`
}

// DeliveryDetail is the per-customer outcome of one notification run.
type DeliveryDetail struct {
	CustomerID   string `json:"customerId"`
	CustomerName string `json:"customerName"`
	SecretsCount int    `json:"secretsCount"`
	Success      bool   `json:"success"`
}

// RunResult aggregates the outcome of a single notification run.
// Details preserve the order the repository returned the customer groups in.
type RunResult struct {
	NotificationsSent int              `json:"notificationsSent"`
	TotalCustomers    int              `json:"totalCustomers"`
	Details           []DeliveryDetail `json:"details"`
}
