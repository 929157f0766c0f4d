package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		ref        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{
			name:       "simple_object",
			ref:        "gs://applyflow-resumes/abc.pdf",
			wantBucket: "applyflow-resumes",
			wantObject: "abc.pdf",
		},
		{
			name:       "nested_object",
			ref:        "gs://applyflow-resumes/resumes/user-1/abc.pdf",
			wantBucket: "applyflow-resumes",
			wantObject: "resumes/user-1/abc.pdf",
		},
		{name: "missing_scheme", ref: "applyflow-resumes/abc.pdf", wantErr: true},
		{name: "http_scheme", ref: "https://applyflow-resumes/abc.pdf", wantErr: true},
		{name: "bucket_only", ref: "gs://applyflow-resumes", wantErr: true},
		{name: "empty_object", ref: "gs://applyflow-resumes/", wantErr: true},
		{name: "empty_bucket", ref: "gs:///abc.pdf", wantErr: true},
		{name: "empty_string", ref: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, object, err := ParseURI(tt.ref)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidRef)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantObject, object)
		})
	}
}

func TestFormatURI(t *testing.T) {
	t.Parallel()

	ref := FormatURI("applyflow-resumes", "resumes/user-1/abc.pdf")
	assert.Equal(t, "gs://applyflow-resumes/resumes/user-1/abc.pdf", ref)

	// Round trip
	bucket, object, err := ParseURI(ref)
	require.NoError(t, err)
	assert.Equal(t, "applyflow-resumes", bucket)
	assert.Equal(t, "resumes/user-1/abc.pdf", object)
}
