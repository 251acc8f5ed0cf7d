package handler

// Response is the envelope every JSON endpoint replies with. Error is set
// only on failures, Data only on success; neither ever carries candidate
// passwords.
type Response struct {
	Status string      `json:"status"`
	Error  string      `json:"error,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status: "error",
		Error:  message,
	}
}
