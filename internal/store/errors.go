package store

import (
	"context"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
)

// Error kinds reported by Classify.
const (
	KindUnique      = "unique"
	KindTimeout     = "timeout"
	KindCanceled    = "canceled"
	KindUnavailable = "unavailable"
	KindAuth        = "auth"
	KindConfig      = "config"
	KindOther       = "other"
)

// Classify maps a store error to a coarse kind across SQL vendors and Firestore.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotConfigured):
		return KindConfig
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case isUniqueConstraintError(err):
		return KindUnique
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "57P"):
			return KindUnavailable
		case strings.HasPrefix(pgErr.Code, "28"):
			return KindAuth
		}
	}
	if pgconn.Timeout(err) {
		return KindTimeout
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil {
		switch myErr.Number {
		case 1040, 1053:
			return KindUnavailable
		case 1044, 1045:
			return KindAuth
		}
	}
	if errors.Is(err, mysql.ErrInvalidConn) {
		return KindUnavailable
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.AlreadyExists:
			return KindUnique
		case codes.DeadlineExceeded:
			return KindTimeout
		case codes.Canceled:
			return KindCanceled
		case codes.Unavailable, codes.ResourceExhausted:
			return KindUnavailable
		case codes.PermissionDenied, codes.Unauthenticated:
			return KindAuth
		}
	}

	return KindOther
}

// isUniqueConstraintError detects database uniqueness constraint violations across vendors.
func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && pgErr.Code == "23505" {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil && myErr.Number == 1062 {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique constraint") ||
		strings.Contains(lower, "duplicate")
}
