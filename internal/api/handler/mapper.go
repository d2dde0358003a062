package handler

import (
	"strings"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
	"github.com/monitorpelanggan/billing-monitor/internal/core/ports"
	"github.com/monitorpelanggan/billing-monitor/internal/listview"
)

func toPagination[T any](p *listview.Page[T]) *paginationResponse {
	if p == nil {
		return nil
	}
	return &paginationResponse{
		Page:        p.Page,
		PerPage:     p.PageSize,
		Total:       p.Total,
		TotalPages:  p.TotalPages,
		HasPrev:     p.HasPrev,
		HasNext:     p.HasNext,
		StartIndex:  p.StartIndex,
		EndIndex:    p.EndIndex,
		PageNumbers: p.PageNumbers,
	}
}

func toCustomerList(r *ports.CustomerList) customerListResponse {
	items := r.Items
	if items == nil {
		items = []domain.Customer{}
	}
	return customerListResponse{Customers: items, Pagination: toPagination(r.Page)}
}

func toContractList(r *ports.ContractList) contractListResponse {
	items := r.Items
	if items == nil {
		items = []domain.Contract{}
	}
	return contractListResponse{Contracts: items, Pagination: toPagination(r.Page)}
}

func toCustomerInput(req createCustomerRequest) ports.CustomerInput {
	return ports.CustomerInput{
		AccountNumber:   req.AccountNumber,
		Name:            req.Name,
		AMID:            req.AMID,
		Product:         req.Product,
		Category:        domain.Category(req.Category),
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		BilledAmount:    req.BilledAmount,
		InvoiceStatus:   domain.InvoiceStatus(req.InvoiceStatus),
		PaymentProgress: req.PaymentProgress,
	}
}

func toPaymentUpdate(req updateCustomerRequest) ports.PaymentUpdate {
	var out ports.PaymentUpdate
	if req.InvoiceStatus != nil {
		s := domain.InvoiceStatus(*req.InvoiceStatus)
		out.InvoiceStatus = &s
	}
	out.PaymentProgress = req.PaymentProgress
	return out
}

func toContractInput(req contractRequest) ports.ContractInput {
	return ports.ContractInput{
		Number:          strings.TrimSpace(req.Number),
		ContractDate:    req.ContractDate,
		Value:           req.Value,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		JobName:         req.JobName,
		CustomerName:    req.CustomerName,
		TransactionType: domain.TransactionType(req.TransactionType),
		Segment:         domain.Segment(req.Segment),
		PICName:         strings.TrimSpace(req.PICName),
	}
}

func toContractPatch(req updateContractRequest) ports.ContractPatch {
	p := ports.ContractPatch{
		Number:       req.Number,
		ContractDate: req.ContractDate,
		Value:        req.Value,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		JobName:      req.JobName,
		CustomerName: req.CustomerName,
		PICName:      req.PICName,
	}
	if req.TransactionType != nil {
		t := domain.TransactionType(*req.TransactionType)
		p.TransactionType = &t
	}
	if req.Segment != nil {
		s := domain.Segment(*req.Segment)
		p.Segment = &s
	}
	return p
}

func toUserInput(username, email, name, role, password string, active *bool) ports.UserInput {
	return ports.UserInput{
		Username: strings.TrimSpace(username),
		Email:    strings.TrimSpace(email),
		Name:     strings.TrimSpace(name),
		Role:     role,
		Password: password,
		IsActive: active,
	}
}
