package dto

import "github.com/yukikurage/workboard-api/internal/utils"

// Response is the envelope of every successful API response.
type Response struct {
	Success bool                  `json:"success"`
	Message string                `json:"message,omitempty"`
	Data    interface{}           `json:"data,omitempty"`
	Meta    *utils.PaginationMeta `json:"meta,omitempty"`
}

func OK(message string, data interface{}) Response {
	return Response{Success: true, Message: message, Data: data}
}

func Page(message string, data interface{}, meta utils.PaginationMeta) Response {
	return Response{Success: true, Message: message, Data: data, Meta: &meta}
}
