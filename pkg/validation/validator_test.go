package validation

import (
	"strings"
	"testing"
)

// TestValidateParameters tests HNSW parameter validation
func TestValidateParameters(t *testing.T) {
	tests := []struct {
		name        string
		req         *ParametersRequest
		expectError bool
		errorField  string
	}{
		{
			name: "Valid parameters",
			req: &ParametersRequest{
				M:                   16,
				LevelLambda:         0.36,
				ConstructionPruning: 200,
				MinNN:               16,
				InitialItemsSize:    1000,
			},
			expectError: false,
		},
		{
			name: "Minimum valid M",
			req: &ParametersRequest{
				M:                   MinM,
				LevelLambda:         0.5,
				ConstructionPruning: 10,
			},
			expectError: false,
		},
		{
			name:        "Nil request - invalid",
			req:         nil,
			expectError: true,
		},
		{
			name: "Zero M - invalid",
			req: &ParametersRequest{
				M:                   0,
				LevelLambda:         0.36,
				ConstructionPruning: 200,
			},
			expectError: true,
			errorField:  "M",
		},
		{
			name: "M below MinM - invalid",
			req: &ParametersRequest{
				M:                   1,
				LevelLambda:         0.36,
				ConstructionPruning: 200,
			},
			expectError: true,
			errorField:  "M",
		},
		{
			name: "Zero LevelLambda - invalid",
			req: &ParametersRequest{
				M:                   16,
				LevelLambda:         0,
				ConstructionPruning: 200,
			},
			expectError: true,
			errorField:  "LevelLambda",
		},
		{
			name: "Negative LevelLambda - invalid",
			req: &ParametersRequest{
				M:                   16,
				LevelLambda:         -0.1,
				ConstructionPruning: 200,
			},
			expectError: true,
			errorField:  "LevelLambda",
		},
		{
			name: "Zero ConstructionPruning - invalid",
			req: &ParametersRequest{
				M:                   16,
				LevelLambda:         0.36,
				ConstructionPruning: 0,
			},
			expectError: true,
			errorField:  "ConstructionPruning",
		},
		{
			name: "Negative MinNN - invalid",
			req: &ParametersRequest{
				M:                   16,
				LevelLambda:         0.36,
				ConstructionPruning: 200,
				MinNN:               -1,
			},
			expectError: true,
			errorField:  "MinNN",
		},
		{
			name: "Negative InitialItemsSize - invalid",
			req: &ParametersRequest{
				M:                   16,
				LevelLambda:         0.36,
				ConstructionPruning: 200,
				InitialItemsSize:    -1,
			},
			expectError: true,
			errorField:  "InitialItemsSize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParameters(tt.req)

			if tt.expectError && err == nil {
				t.Errorf("Expected error but got nil")
			}

			if !tt.expectError && err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}

			if tt.expectError && err != nil && tt.errorField != "" {
				if !containsField(err.Error(), tt.errorField) {
					t.Errorf("Expected error for field %s, but got: %v", tt.errorField, err)
				}
			}
		})
	}
}

// TestValidateBatchSize tests AddItems batch size validation
func TestValidateBatchSize(t *testing.T) {
	tests := []struct {
		name        string
		size        int
		expectError bool
	}{
		{
			name:        "Single item batch - valid",
			size:        1,
			expectError: false,
		},
		{
			name:        "Zero items - valid (no-op batch)",
			size:        0,
			expectError: false,
		},
		{
			name:        "100000 items - valid",
			size:        100_000,
			expectError: false,
		},
		{
			name:        "At max batch size - valid",
			size:        MaxBatchSize,
			expectError: false,
		},
		{
			name:        "Exceeds max batch size - invalid",
			size:        MaxBatchSize + 1,
			expectError: true,
		},
		{
			name:        "Negative size - invalid",
			size:        -1,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBatchSize(tt.size)

			if tt.expectError && err == nil {
				t.Errorf("Expected error for size %d but got nil", tt.size)
			}

			if !tt.expectError && err != nil {
				t.Errorf("Expected no error for size %d but got: %v", tt.size, err)
			}
		})
	}
}

// Helper functions

func containsField(errMsg, field string) bool {
	return strings.Contains(errMsg, field)
}
