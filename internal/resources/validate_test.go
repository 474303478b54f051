package resources

import (
	"testing"

	"github.com/google/uuid"

	"github.com/yug49/multi-tenant-event-booking-system/internal/models"
	"github.com/yug49/multi-tenant-event-booking-system/pkg/apperror"
)

func intPtr(n int) *int { return &n }

func TestValidate(t *testing.T) {
	orgID := uuid.New()

	tests := []struct {
		name     string
		resource models.Resource
		wantCode string
	}{
		{
			name:     "exclusive_owned",
			resource: models.Resource{Name: "room", Type: models.ResourceExclusive, OrganizationID: &orgID},
		},
		{
			name:     "exclusive_global",
			resource: models.Resource{Name: "hall", Type: models.ResourceExclusive, IsGlobal: true},
		},
		{
			name:     "shareable_with_max",
			resource: models.Resource{Name: "lab", Type: models.ResourceShareable, OrganizationID: &orgID, MaxConcurrentUsage: intPtr(3)},
		},
		{
			name:     "shareable_missing_max",
			resource: models.Resource{Name: "lab", Type: models.ResourceShareable, OrganizationID: &orgID},
			wantCode: "max_concurrent_usage_required",
		},
		{
			name:     "shareable_zero_max",
			resource: models.Resource{Name: "lab", Type: models.ResourceShareable, OrganizationID: &orgID, MaxConcurrentUsage: intPtr(0)},
			wantCode: "max_concurrent_usage_required",
		},
		{
			name:     "consumable_with_quantity",
			resource: models.Resource{Name: "markers", Type: models.ResourceConsumable, OrganizationID: &orgID, AvailableQuantity: intPtr(0)},
		},
		{
			name:     "consumable_missing_quantity",
			resource: models.Resource{Name: "markers", Type: models.ResourceConsumable, OrganizationID: &orgID},
			wantCode: "available_quantity_required",
		},
		{
			name:     "consumable_negative_quantity",
			resource: models.Resource{Name: "markers", Type: models.ResourceConsumable, OrganizationID: &orgID, AvailableQuantity: intPtr(-1)},
			wantCode: "available_quantity_required",
		},
		{
			name:     "global_with_org",
			resource: models.Resource{Name: "hall", Type: models.ResourceExclusive, IsGlobal: true, OrganizationID: &orgID},
			wantCode: "global_scope",
		},
		{
			name:     "non_global_without_org",
			resource: models.Resource{Name: "room", Type: models.ResourceExclusive},
			wantCode: "organization_required",
		},
		{
			name:     "unknown_type",
			resource: models.Resource{Name: "thing", Type: "RENTABLE", OrganizationID: &orgID},
			wantCode: "resource_type",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.resource)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("valid resource rejected: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("invalid resource accepted")
			}
			if apperror.KindOf(err) != apperror.KindInvalidRequest {
				t.Fatalf("kind = %v, want invalid_request", apperror.KindOf(err))
			}
			if apperror.CodeOf(err) != tt.wantCode {
				t.Fatalf("code = %s, want %s", apperror.CodeOf(err), tt.wantCode)
			}
		})
	}
}
