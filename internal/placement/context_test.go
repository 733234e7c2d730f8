package placement

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Valid(t *testing.T) {
	pc, err := New("cluster-1", "task-1", []string{"subnet-a", "subnet-b", "subnet-c"}, "sg-1", "worker", nil)
	require.NoError(t, err)

	assert.Equal(t, "cluster-1", pc.ClusterID)
	assert.Equal(t, "task-1", pc.TaskTemplateID)
	assert.Equal(t, []string{"subnet-a", "subnet-b", "subnet-c"}, pc.SubnetIDs)
	assert.Equal(t, "sg-1", pc.SecurityBoundaryID)
	assert.Equal(t, "worker", pc.ContainerName)
}

func TestNew_InsufficientSubnets(t *testing.T) {
	tests := []struct {
		name    string
		subnets []string
	}{
		{"no subnets", nil},
		{"one subnet", []string{"subnet-a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("cluster-1", "task-1", tt.subnets, "sg-1", "worker", nil)
			assert.True(t, errors.Is(err, ErrInsufficientSubnets))
		})
	}
}

func TestNew_RequiredFields(t *testing.T) {
	subnets := []string{"subnet-a", "subnet-b"}

	tests := []struct {
		name string
		fn   func() (Context, error)
	}{
		{"missing cluster", func() (Context, error) {
			return New("", "task-1", subnets, "sg-1", "worker", nil)
		}},
		{"missing template", func() (Context, error) {
			return New("cluster-1", "", subnets, "sg-1", "worker", nil)
		}},
		{"missing boundary", func() (Context, error) {
			return New("cluster-1", "task-1", subnets, "", "worker", nil)
		}},
		{"missing container", func() (Context, error) {
			return New("cluster-1", "task-1", subnets, "sg-1", "", nil)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fn()
			assert.Error(t, err)
		})
	}
}

func TestNew_CopiesInputs(t *testing.T) {
	subnets := []string{"subnet-a", "subnet-b"}
	env := map[string]string{"PG_HOST": "db.internal"}

	pc, err := New("cluster-1", "task-1", subnets, "sg-1", "worker", env)
	require.NoError(t, err)

	subnets[0] = "mutated"
	env["PG_HOST"] = "mutated"

	assert.Equal(t, "subnet-a", pc.SubnetIDs[0])
	assert.Equal(t, "db.internal", pc.StaticEnv["PG_HOST"])
}
