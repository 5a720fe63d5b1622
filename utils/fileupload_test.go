package utils

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestFileHeader creates a mock multipart.FileHeader for testing
func createTestFileHeader(filename string, size int64, content []byte) *multipart.FileHeader {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", "text/csv")
	part, _ := writer.CreatePart(h)
	part.Write(content)
	writer.Close()

	reader := multipart.NewReader(body, writer.Boundary())
	form, _ := reader.ReadForm(int64(len(content)) + 1024)
	defer form.RemoveAll()

	if len(form.File["file"]) > 0 {
		fileHeader := form.File["file"][0]
		// Override size for testing purposes
		fileHeader.Size = size
		return fileHeader
	}

	return nil
}

func TestValidateImportFile_Success(t *testing.T) {
	content := []byte("item_code,kora,white,self_dyed,contrast_dyed\nD101,K1,W1,S1,C1\n")
	fileHeader := createTestFileHeader("items.csv", int64(len(content)), content)
	require.NotNil(t, fileHeader)

	assert.NoError(t, ValidateImportFile(fileHeader))
}

func TestValidateImportFile_UppercaseExtension(t *testing.T) {
	content := []byte("a,b\n1,2\n")
	fileHeader := createTestFileHeader("ITEMS.CSV", int64(len(content)), content)
	require.NotNil(t, fileHeader)

	assert.NoError(t, ValidateImportFile(fileHeader))
}

func TestValidateImportFile_Errors(t *testing.T) {
	content := []byte("a,b\n1,2\n")

	tests := []struct {
		name         string
		header       *multipart.FileHeader
		expectedCode string
	}{
		{"missing file", nil, "MISSING_FILE"},
		{"too large", createTestFileHeader("big.csv", 11*1024*1024, content), "FILE_TOO_LARGE"},
		{"empty", createTestFileHeader("empty.csv", 0, content), "EMPTY_FILE"},
		{"wrong extension", createTestFileHeader("items.xlsx", int64(len(content)), content), "INVALID_FILE_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImportFile(tt.header)
			require.Error(t, err)

			uploadErr, ok := err.(*FileUploadError)
			require.True(t, ok, "Error should be of type FileUploadError")
			assert.Equal(t, tt.expectedCode, uploadErr.Code)
		})
	}
}
