// Package errs - виды ошибок ядра бронирования. Вид проверяется через errors.Is.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation - некорректный ввод: end <= start, нет запрашивающего, start в прошлом
	ErrValidation = errors.New("validation failed")
	// ErrNotFound - нет комнаты, брони или пользователя
	ErrNotFound = errors.New("not found")
	// ErrConflict - слот занят (предпроверка или constraint в базе)
	ErrConflict = errors.New("conflict")
	// ErrForbidden - отмена не владельцем и не админом
	ErrForbidden = errors.New("forbidden")
	// ErrTransient - сбой сети или базы, можно повторить
	ErrTransient = errors.New("transient store error")
	// ErrFatal - неожиданная ошибка базы, без повторов
	ErrFatal = errors.New("fatal store error")
)

var kinds = []error{ErrValidation, ErrNotFound, ErrConflict, ErrForbidden, ErrTransient, ErrFatal}

type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return e.Msg + ": " + e.Err.Error()
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Kind.Error() + ": " + e.Err.Error()
	default:
		return e.Kind.Error()
	}
}

// Unwrap отдаёт и вид, и причину: errors.Is сработает на оба
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

func New(kind error, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind error, err error, msg string) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func Validation(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) error {
	return &Error{Kind: ErrForbidden, Msg: fmt.Sprintf(format, args...)}
}

// KindOf возвращает вид ошибки или nil
func KindOf(err error) error {
	if err == nil {
		return nil
	}

	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}

	return nil
}

// Classify оставляет классифицированные ошибки как есть, остальные помечает как fatal
func Classify(err error) error {
	if err == nil || KindOf(err) != nil {
		return err
	}

	return &Error{Kind: ErrFatal, Err: err}
}

// Message - текст, который можно показать пользователю
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}

	if k := KindOf(err); k != nil {
		return k.Error()
	}

	return "internal error"
}
