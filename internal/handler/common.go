package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/safehaven/peer-support-core/internal/authz"
	"github.com/safehaven/peer-support-core/internal/errcode"
	"github.com/safehaven/peer-support-core/internal/repository"
)

func formatUint(v uint64) string { return strconv.FormatUint(v, 10) }

// writeDomainError translates the error vocabulary of the authz and
// repository layers into the stable HTTP codes of the external contract.
// Anything unrecognized is a plain 500; nothing in this service is allowed
// to escape as an unhandled crash.
func writeDomainError(c echo.Context, err error) error {
	switch err {
	case authz.ErrInsufficientRole:
		return c.JSON(http.StatusForbidden, echo.Map{"error": errcode.InsufficientPrivileges})
	case authz.ErrCrossSchool:
		return c.JSON(http.StatusForbidden, echo.Map{"error": errcode.CrossSchoolAccessDenied})
	case repository.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": errcode.NotFound})
	case repository.ErrInvalidState:
		return c.JSON(http.StatusConflict, echo.Map{"error": errcode.InvalidState})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// pathUint parses a numeric path parameter.
func pathUint(c echo.Context, name string) (uint64, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
