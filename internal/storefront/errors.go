package storefront

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes why a command was ignored.
type ErrorCode string

const (
	// ErrCodeInstanceNotFound indicates no instance is registered under the id.
	ErrCodeInstanceNotFound ErrorCode = "INSTANCE_NOT_FOUND"

	// ErrCodeCategoryNotFound indicates the instance has no such category.
	ErrCodeCategoryNotFound ErrorCode = "CATEGORY_NOT_FOUND"

	// ErrCodeItemNotFound indicates no category of the instance holds the item key.
	ErrCodeItemNotFound ErrorCode = "ITEM_NOT_FOUND"

	// ErrCodeCartLineNotFound indicates the cart has no line for the item key.
	ErrCodeCartLineNotFound ErrorCode = "CART_LINE_NOT_FOUND"

	// ErrCodeSettingNotFound indicates the instance has no such setting.
	ErrCodeSettingNotFound ErrorCode = "SETTING_NOT_FOUND"

	// ErrCodeInvalidValue indicates an argument the command cannot apply.
	ErrCodeInvalidValue ErrorCode = "INVALID_VALUE"

	// ErrCodeWrongMode indicates the command is not available in the current mode.
	ErrCodeWrongMode ErrorCode = "WRONG_MODE"
)

// LookupError reports a command that was treated as a no-op.
type LookupError struct {
	Code     ErrorCode
	Instance string
	Key      string
	Message  string
}

// Error implements the error interface.
func (e *LookupError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "no-op"
	}
	if e.Key != "" {
		return fmt.Sprintf("%s: %s (instance=%s, key=%s)", e.Code, msg, e.Instance, e.Key)
	}
	return fmt.Sprintf("%s: %s (instance=%s)", e.Code, msg, e.Instance)
}

// IsNotFound returns true if err reports a missing instance, category, item,
// cart line or setting. Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	var le *LookupError
	if !errors.As(err, &le) {
		return false
	}
	switch le.Code {
	case ErrCodeInstanceNotFound, ErrCodeCategoryNotFound, ErrCodeItemNotFound,
		ErrCodeCartLineNotFound, ErrCodeSettingNotFound:
		return true
	}
	return false
}

// IsInvalid returns true if err reports a rejected argument or a command
// issued in the wrong mode.
func IsInvalid(err error) bool {
	var le *LookupError
	if !errors.As(err, &le) {
		return false
	}
	return le.Code == ErrCodeInvalidValue || le.Code == ErrCodeWrongMode
}

// CodeOf extracts the error code, or "" if err is not a *LookupError.
func CodeOf(err error) ErrorCode {
	var le *LookupError
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}

func instanceNotFound(id string) *LookupError {
	return &LookupError{Code: ErrCodeInstanceNotFound, Instance: id, Message: "instance does not exist"}
}

func categoryNotFound(id, key string) *LookupError {
	return &LookupError{Code: ErrCodeCategoryNotFound, Instance: id, Key: key, Message: "category does not exist"}
}

func itemNotFound(id, key string) *LookupError {
	return &LookupError{Code: ErrCodeItemNotFound, Instance: id, Key: key, Message: "item does not exist"}
}

func invalidValue(id, key, msg string) *LookupError {
	return &LookupError{Code: ErrCodeInvalidValue, Instance: id, Key: key, Message: msg}
}
