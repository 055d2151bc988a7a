package services

import (
	"context"
	"strings"

	"crud-microservices/application/ports"
	"crud-microservices/pkg/auth"
	apperrors "crud-microservices/pkg/errors"
	"crud-microservices/pkg/utils"

	"go.uber.org/zap"
)

// Stats are record counts per table.
type Stats struct {
	Users     int    `json:"users"`
	Products  int    `json:"products"`
	Orders    int    `json:"orders"`
	Timestamp string `json:"timestamp"`
}

// AdminService serves operator-only reads.
type AdminService struct {
	base
}

// NewAdminService creates a new admin service
func NewAdminService(store ports.RecordStore, logger *zap.Logger) *AdminService {
	return &AdminService{base: newBase(store, nil, logger)}
}

// IsAdmin reports whether the caller's username marks an operator.
func IsAdmin(caller *auth.CallerIdentity) bool {
	return caller != nil && strings.Contains(caller.Username, "admin")
}

// Stats counts the records in every table.
func (s *AdminService) Stats(ctx context.Context, caller *auth.CallerIdentity) (*Stats, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if !IsAdmin(caller) {
		return nil, apperrors.NewAuthorizationError("Admin access required")
	}

	counts := make(map[string]int, 3)
	for _, table := range []string{ports.TableUsers, ports.TableProducts, ports.TableOrders} {
		n, err := s.store.Count(ctx, table)
		if err != nil {
			return nil, err
		}
		counts[table] = n
	}

	return &Stats{
		Users:     counts[ports.TableUsers],
		Products:  counts[ports.TableProducts],
		Orders:    counts[ports.TableOrders],
		Timestamp: utils.ISOTimestamp(s.now()),
	}, nil
}
