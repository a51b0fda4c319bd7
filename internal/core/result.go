package core

import "net/http"

type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// Result is the uniform envelope every core operation answers with.
type Result[T any] struct {
	Status  Status `json:"status"`
	Code    int    `json:"code"`
	Data    T      `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// Confirmation is the payload of a successful write.
type Confirmation struct {
	ID int64 `json:"transactionId"`
}

func OK[T any](data T) *Result[T] {
	return &Result[T]{Status: StatusSuccess, Code: http.StatusOK, Data: data}
}

func Confirm(code int, id int64, message string) *Result[Confirmation] {
	return &Result[Confirmation]{
		Status:  StatusSuccess,
		Code:    code,
		Data:    Confirmation{ID: id},
		Message: message,
	}
}

// Failure builds the FAILED envelope for err.
func Failure(err error) *Result[any] {
	msg := "unexpected error"
	if err != nil {
		msg = err.Error()
	}
	return &Result[any]{Status: StatusFailed, Code: StatusCode(err), Message: msg}
}

// Page is one page of an ordered result set.
type Page[T any] struct {
	Items         []T   `json:"items"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
}

// NewPage computes the page count for total elements split into pages of size.
func NewPage[T any](items []T, size int, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	if total <= 0 || size <= 0 {
		return Page[T]{Items: items}
	}
	pages := total / int64(size)
	if total%int64(size) > 0 {
		pages++
	}
	return Page[T]{Items: items, TotalPages: int(pages), TotalElements: total}
}

// EmptyPage is the page returned when nothing matched.
func EmptyPage[T any]() Page[T] {
	return Page[T]{Items: []T{}}
}
