package firestore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "unavailable", err: status.Error(codes.Unavailable, "try later"), want: true},
		{name: "aborted", err: status.Error(codes.Aborted, "contention"), want: true},
		{name: "deadline", err: status.Error(codes.DeadlineExceeded, "slow"), want: true},
		{name: "quota", err: status.Error(codes.ResourceExhausted, "quota"), want: true},
		{name: "permission", err: status.Error(codes.PermissionDenied, "nope"), want: false},
		{name: "invalid argument", err: status.Error(codes.InvalidArgument, "bad"), want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestNewDocumentFirestore(t *testing.T) {
	repo, err := NewDocumentFirestore(nil, "documents")
	assert.EqualError(t, err, "firestore client is required")
	assert.Nil(t, repo)
}
