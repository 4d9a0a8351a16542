package handler

import (
	"time"

	"github.com/chaeso/delivery-api/internal/core/domain"
	"github.com/chaeso/delivery-api/internal/core/ports"
)

// --- Request → Service input ---

func parseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, domain.NewValidationError(field, "must be a date in the format "+dateLayout)
	}
	return t, nil
}

func parseOptionalDate(field string, s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := parseDate(field, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toAddressInput(a addressRequest) ports.AddressInput {
	return ports.AddressInput{
		CEP:      a.CEP,
		Street:   a.Street,
		Number:   a.Number,
		District: a.District,
		City:     a.City,
		UF:       a.UF,
	}
}

func toAddressPatch(a *addressPatchRequest) *ports.AddressPatch {
	if a == nil {
		return nil
	}
	return &ports.AddressPatch{
		CEP:      a.CEP,
		Street:   a.Street,
		Number:   a.Number,
		District: a.District,
		City:     a.City,
		UF:       a.UF,
	}
}

func passwordOf(u *userPatchRequest) *string {
	if u == nil {
		return nil
	}
	return u.Password
}

func toCreateClientInput(actor domain.Principal, req createClientRequest) (ports.CreateClientInput, error) {
	birthday, err := parseDate("birthday", req.Birthday)
	if err != nil {
		return ports.CreateClientInput{}, err
	}
	return ports.CreateClientInput{
		Actor:    actor,
		UserID:   req.UserID,
		Name:     req.Name,
		Birthday: birthday,
		Address:  toAddressInput(req.Address),
	}, nil
}

func toUpdateClientInput(actor domain.Principal, id uint, req updateClientRequest) (ports.UpdateClientInput, error) {
	birthday, err := parseOptionalDate("birthday", req.Birthday)
	if err != nil {
		return ports.UpdateClientInput{}, err
	}
	return ports.UpdateClientInput{
		Actor:    actor,
		ID:       id,
		Name:     req.Name,
		Birthday: birthday,
		Address:  toAddressPatch(req.Address),
		Password: passwordOf(req.User),
	}, nil
}

func toCreateTransporterInput(actor domain.Principal, req createTransporterRequest) (ports.CreateTransporterInput, error) {
	birthday, err := parseDate("birthday", req.Birthday)
	if err != nil {
		return ports.CreateTransporterInput{}, err
	}
	return ports.CreateTransporterInput{
		Actor:       actor,
		UserID:      req.UserID,
		Name:        req.Name,
		Birthday:    birthday,
		CNH:         req.CNH,
		CategoryCNH: req.CategoryCNH,
	}, nil
}

func toUpdateTransporterInput(actor domain.Principal, id uint, req updateTransporterRequest) (ports.UpdateTransporterInput, error) {
	birthday, err := parseOptionalDate("birthday", req.Birthday)
	if err != nil {
		return ports.UpdateTransporterInput{}, err
	}
	return ports.UpdateTransporterInput{
		Actor:       actor,
		ID:          id,
		Name:        req.Name,
		Birthday:    birthday,
		CNH:         req.CNH,
		CategoryCNH: req.CategoryCNH,
		Password:    passwordOf(req.User),
	}, nil
}
