/*
 * errors.go, part of genrtp
 *
 * Copyright 2025 Raul Mera A. (rmeraaatacademicosdotutadotcl)
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package genrtp

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies the errors returned by all genrtp packages.
// A Kind is itself an error, so it can be used as the target of
// errors.Is:
//
//	if errors.Is(err, genrtp.FormatError) { ... }
type Kind int

const (
	//the file doesn't match the expected grammar
	FormatError Kind = iota + 1
	//a term or bond refers to an atom that doesn't exist
	ReferenceError
	//hydrogen classification needs more heavy neighbors than there are
	TopologyInconsistency
	//unsupported force field, bad boundary definition, etc.
	ConfigError
)

func (K Kind) String() string {
	switch K {
	case FormatError:
		return "format error"
	case ReferenceError:
		return "reference error"
	case TopologyInconsistency:
		return "topology inconsistency"
	case ConfigError:
		return "configuration error"
	}
	return "unknown error"
}

func (K Kind) Error() string { return K.String() }

// Error is the error type for the whole library. It keeps the file, section and line
// where the problem was found, when those make sense.
// The Decorate method works as in goChem: each caller can add its name (and possibly
// some extra information in the form "Function: info") as the error goes up.
type Error struct {
	Kind    Kind
	File    string //empty if the error is not associated to a file
	Section string
	Line    int //1-based, 0 if unknown
	message string
	deco    []string
	err     error
}

// Errorf returns a new *Error of the given kind with a formatted message.
// If one of the args is an error and the format uses %w, it will be wrapped.
func Errorf(kind Kind, format string, args ...interface{}) *Error {
	e := fmt.Errorf(format, args...)
	ret := &Error{Kind: kind, message: e.Error()}
	ret.err = errors.Unwrap(e)
	return ret
}

// At sets the section and line of the receiver and returns it.
func (E *Error) At(section string, line int) *Error {
	E.Section = section
	E.Line = line
	return E
}

// InFile sets the file name of the receiver, unless it is already set, and returns it.
func (E *Error) InFile(name string) *Error {
	if E.File == "" {
		E.File = name
	}
	return E
}

func (E *Error) Error() string {
	loc := make([]string, 0, 3)
	if E.File != "" {
		loc = append(loc, E.File)
	}
	if E.Section != "" {
		loc = append(loc, "["+E.Section+"]")
	}
	if E.Line > 0 {
		loc = append(loc, fmt.Sprintf("line %d", E.Line))
	}
	if len(loc) == 0 {
		return fmt.Sprintf("%s: %s", E.Kind, E.message)
	}
	return fmt.Sprintf("%s: %s: %s", E.Kind, strings.Join(loc, " "), E.message)
}

// Decorate adds information to the error and returns the current decoration slice.
// An empty string just returns the slice.
func (E *Error) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func (E *Error) Unwrap() error { return E.err }

// Is reports whether target is the Kind of the receiver.
func (E *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == E.Kind
}

// Decorate adds deco to err if err is (or wraps) an *Error, and returns err.
// It does nothing with a nil error or with errors of other types.
func Decorate(err error, deco string) error {
	var e *Error
	if errors.As(err, &e) {
		e.Decorate(deco)
	}
	return err
}

// WithFile sets the file name on err if err is (or wraps) an *Error without one.
// Other errors are just wrapped with the name as prefix.
func WithFile(err error, name string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		e.InFile(name)
		return err
	}
	return fmt.Errorf("%s: %w", name, err)
}
