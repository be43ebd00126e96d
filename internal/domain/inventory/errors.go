package inventory

import "errors"

var (
	ErrUnitNotFound          = errors.New("room unit not found")
	ErrInvalidStatus         = errors.New("invalid room unit status")
	ErrStatusChangeForbidden = errors.New("room unit status change not allowed")
)
