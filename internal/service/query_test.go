package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docbridge/internal/model"
	repoMocks "docbridge/internal/repository/mocks"
)

func TestLister_List(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		repoDocs []model.Document
		repoErr  error
		want     []DocumentView
		wantErr  error
	}{
		{
			name: "maps every record",
			repoDocs: []model.Document{
				{ID: "1", Name: "1_a.pdf", URL: "https://x/a.pdf"},
				{ID: "2", Name: "2_b.pdf", URL: "https://x/b.pdf"},
			},
			want: []DocumentView{
				{ID: "1", Name: "1_a.pdf", URL: "https://x/a.pdf"},
				{ID: "2", Name: "2_b.pdf", URL: "https://x/b.pdf"},
			},
		},
		{
			name:     "empty store gives empty slice",
			repoDocs: []model.Document{},
			want:     []DocumentView{},
		},
		{
			name:    "repository error",
			repoErr: errors.New("connection refused"),
			wantErr: model.ErrRecordRead,
		},
		{
			name:    "already wrapped error kept",
			repoErr: model.ErrRecordRead,
			wantErr: model.ErrRecordRead,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockDocumentRepository)
			if tt.repoErr != nil {
				mRepo.On("List", ctx).Return(nil, tt.repoErr)
			} else {
				mRepo.On("List", ctx).Return(tt.repoDocs, nil)
			}

			got, err := NewLister(mRepo).List(ctx)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestLister_ListEncodesEmptyArray(t *testing.T) {
	mRepo := new(repoMocks.MockDocumentRepository)
	mRepo.On("List", context.Background()).Return(nil, nil)

	got, err := NewLister(mRepo).List(context.Background())
	require.NoError(t, err)

	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(b))
}
