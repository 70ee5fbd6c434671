package tickets

type ReleaseHoldRequest struct {
	HoldToken string `json:"hold_token" binding:"required"`
}

type ConfirmationRequest struct {
	TicketIDs []string `json:"ticket_ids" binding:"required,min=1,max=50,dive,uuid"`
}

type PurchaseItemRequest struct {
	TicketID  string `json:"ticket_id" binding:"required,uuid"`
	HoldToken string `json:"hold_token"`
}

type PurchaseRequest struct {
	Items []PurchaseItemRequest `json:"items" binding:"required,min=1,max=50,dive"`
}

type ChangeStatusRequest struct {
	Status    string   `json:"status" binding:"required"`
	TicketIDs []string `json:"ticket_ids" binding:"required,min=1,dive,uuid"`
	ClientID  *string  `json:"client_id" binding:"omitempty,uuid"`
}
