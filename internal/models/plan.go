package models

// Plan тарифный план подписки. Цена хранится в минимальных единицах валюты.
type Plan struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Price          int64  `json:"price"`
	DurationInDays int    `json:"duration_in_days"`
	Description    string `json:"description"`
}

// IsPaid сообщает, является ли план платным.
func (p Plan) IsPaid() bool {
	return p.Price > 0
}

// PlanRequest команда создания или замены плана администратором.
type PlanRequest struct {
	Name           string `json:"name" validate:"required,max=128"`
	Price          *int64 `json:"price" validate:"required,min=0"`
	DurationInDays int    `json:"duration_in_days" validate:"required,gt=0"`
	Description    string `json:"description" validate:"max=2048"`
}

// ToPlan переводит команду в доменную модель.
func (r PlanRequest) ToPlan() Plan {
	var price int64
	if r.Price != nil {
		price = *r.Price
	}
	return Plan{
		Name:           r.Name,
		Price:          price,
		DurationInDays: r.DurationInDays,
		Description:    r.Description,
	}
}
