package serverutils

// Response is the envelope every endpoint returns.
type Response[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{Message: message, Data: data}
}

// ErrorResponse is the envelope the error middleware renders.
type ErrorResponse struct {
	Message string `json:"message"`
}
