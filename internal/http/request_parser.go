// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.
// Every malformed input is reported as a core validation error so the
// handlers answer 400 with the FAILED envelope.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"mywallet/internal/core"
	"mywallet/internal/filter"
)

// Paging defaults applied when the query string leaves them out.
const (
	DefaultPageSize  = 10
	DefaultSortField = core.SortByDate

	maxBodyBytes = 1 << 20
)

// ParseOwnerQuery reads the per-owner listing parameters: email (required),
// pageNumber, pageSize, searchKey, sortField, sortDirec and transactionType.
// The sort direction defaults to newest first.
func ParseOwnerQuery(r *http.Request) (core.OwnerQuery, error) {
	email := queryValue(r, "email")
	if email == "" {
		return core.OwnerQuery{}, core.ErrEmptyOwner
	}

	page, err := parsePageRequest(r)
	if err != nil {
		return core.OwnerQuery{}, err
	}

	page.Sort = core.Sort{Field: DefaultSortField, Direction: core.Desc}
	if v := queryValue(r, "sortField"); v != "" {
		page.Sort.Field = v
	}
	if v := queryValue(r, "sortDirec"); v != "" {
		if page.Sort.Direction, err = core.ParseDirection(v); err != nil {
			return core.OwnerQuery{}, err
		}
	}

	txType, err := parseTransactionType(queryValue(r, "transactionType"))
	if err != nil {
		return core.OwnerQuery{}, err
	}

	return core.OwnerQuery{
		OwnerEmail:      email,
		Page:            page,
		SearchKey:       queryValue(r, "searchKey"),
		TransactionType: txType,
	}, nil
}

// ParsePageQuery reads the administrative listing parameters.
func ParsePageQuery(r *http.Request) (core.PageQuery, error) {
	page, err := parsePageRequest(r)
	if err != nil {
		return core.PageQuery{}, err
	}
	return core.PageQuery{Page: page, SearchKey: queryValue(r, "searchKey")}, nil
}

// ParseCriteria reads the optional export filters email, from, to,
// categoryId, min and max. Absent parameters leave the criterion unset.
func ParseCriteria(r *http.Request) (filter.Criteria, error) {
	c := filter.Criteria{OwnerEmail: queryValue(r, "email")}

	dates := []struct {
		key string
		dst **core.Date
	}{{"from", &c.From}, {"to", &c.To}}
	for _, p := range dates {
		v := queryValue(r, p.key)
		if v == "" {
			continue
		}
		d, err := core.ParseDate(v)
		if err != nil {
			return filter.Criteria{}, fmt.Errorf("%s: %w", p.key, err)
		}
		*p.dst = &d
	}

	if v := queryValue(r, "categoryId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter.Criteria{}, fmt.Errorf("%w: categoryId must be an integer, got %q", core.ErrValidation, v)
		}
		c.CategoryID = &id
	}

	amounts := []struct {
		key string
		dst **decimal.Decimal
	}{{"min", &c.MinAmount}, {"max", &c.MaxAmount}}
	for _, p := range amounts {
		v := queryValue(r, p.key)
		if v == "" {
			continue
		}
		amount, err := core.ParseAmount(v)
		if err != nil {
			return filter.Criteria{}, fmt.Errorf("%s: %w", p.key, err)
		}
		*p.dst = &amount
	}

	return c, nil
}

// ParseID reads the {id} path segment.
func ParseID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: transaction id must be a positive integer, got %q", core.ErrValidation, raw)
	}
	return id, nil
}

// DecodeTransactionRequest reads a JSON transaction body.
func DecodeTransactionRequest(r *http.Request) (core.TransactionRequest, error) {
	var req core.TransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		return core.TransactionRequest{}, err
	}
	req.OwnerEmail = sanitizeInput(req.OwnerEmail)
	req.Description = sanitizeInput(req.Description)
	if err := core.ValidateAmount(req.Amount); err != nil {
		return core.TransactionRequest{}, err
	}
	return req, nil
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, core.ErrValidation) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", core.ErrValidation)
		}
		return fmt.Errorf("%w: malformed request body: %v", core.ErrValidation, err)
	}
	return nil
}

func parsePageRequest(r *http.Request) (core.PageRequest, error) {
	number, err := intParam(r, "pageNumber", 0)
	if err != nil {
		return core.PageRequest{}, err
	}
	size, err := intParam(r, "pageSize", DefaultPageSize)
	if err != nil {
		return core.PageRequest{}, err
	}
	return core.PageRequest{Number: number, Size: size}, nil
}

func intParam(r *http.Request, key string, def int) (int, error) {
	v := queryValue(r, key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", core.ErrValidation, key, v)
	}
	return n, nil
}

// parseTransactionType accepts a type id or the names EXPENSE and INCOME.
func parseTransactionType(v string) (int, error) {
	switch strings.ToUpper(v) {
	case "":
		return 0, nil
	case "EXPENSE":
		return core.TransactionTypeExpense, nil
	case "INCOME":
		return core.TransactionTypeIncome, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: unknown transaction type %q", core.ErrValidation, v)
	}
	return n, nil
}
