package handler

import (
	"time"

	"github.com/msomdec/campuscoders/internal/domain"
	"github.com/msomdec/campuscoders/internal/service"
)

// SessionDTO is the JSON representation of a user without its credential.
type SessionDTO struct {
	ID                 string  `json:"id"`
	Email              string  `json:"email"`
	Name               string  `json:"name"`
	Avatar             string  `json:"avatar,omitempty"`
	Role               string  `json:"role"`
	Subscription       string  `json:"subscription"`
	SubscriptionExpiry *string `json:"subscriptionExpiry,omitempty"`
	JoinedAt           string  `json:"joinedAt"`
}

func toSessionDTO(s domain.Session) SessionDTO {
	dto := SessionDTO{
		ID:           s.ID,
		Email:        s.Email,
		Name:         s.Name,
		Avatar:       s.Avatar,
		Role:         s.Role.String(),
		Subscription: s.Tier.String(),
		JoinedAt:     s.JoinedAt.Format(time.RFC3339),
	}
	if s.SubscriptionExpiry != nil {
		expiry := s.SubscriptionExpiry.Format(time.RFC3339)
		dto.SubscriptionExpiry = &expiry
	}
	return dto
}

func toSessionDTOs(sessions []domain.Session) []SessionDTO {
	dtos := make([]SessionDTO, len(sessions))
	for i, s := range sessions {
		dtos[i] = toSessionDTO(s)
	}
	return dtos
}

// PlanDTO is the JSON representation of a subscription plan.
type PlanDTO struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Features []string `json:"features"`
	Popular  bool     `json:"popular"`
}

func toPlanDTO(p domain.SubscriptionPlan) PlanDTO {
	return PlanDTO{
		ID:       p.ID.String(),
		Name:     p.Name,
		Price:    p.Price,
		Features: p.Features,
		Popular:  p.Popular,
	}
}

func toPlanDTOs(plans []domain.SubscriptionPlan) []PlanDTO {
	dtos := make([]PlanDTO, len(plans))
	for i, p := range plans {
		dtos[i] = toPlanDTO(p)
	}
	return dtos
}

// AdminOverviewDTO is the admin dashboard payload.
type AdminOverviewDTO struct {
	Users []SessionDTO      `json:"users"`
	Stats service.UserStats `json:"stats"`
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=1"`
	Email  *string `json:"email" validate:"omitempty,email"`
	Avatar *string `json:"avatar" validate:"omitempty,url"`
}

type subscribeRequest struct {
	PlanID string `json:"planId" validate:"required"`
}

type roleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

type tierRequest struct {
	Subscription string `json:"subscription" validate:"required,oneof=free premium pro"`
}
