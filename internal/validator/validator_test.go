package validator

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type questionInput struct {
	Type  string `json:"question_type" binding:"required,questiontype"`
	Title string `json:"title" binding:"required"`
}

func init() {
	gin.SetMode(gin.TestMode)
	Setup()
}

func bindJSON(t *testing.T, body string) map[string]string {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var in questionInput
	return Bind(c, &in)
}

func TestBindQuestionType(t *testing.T) {
	assert.Nil(t, bindJSON(t, `{"question_type":"MATCHING","title":"Animals"}`))

	fields := bindJSON(t, `{"question_type":"CROSSWORD","title":"Animals"}`)
	require.Contains(t, fields, "question_type")
	assert.Contains(t, fields["question_type"], "supported question type")
}

func TestBindSyntaxError(t *testing.T) {
	fields := bindJSON(t, `{"question_type":`)
	assert.Contains(t, fields, "detail")
}

func TestBindPayloadMultipart(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("payload", `{"question_type":"ORDERING","title":"Life cycle"}`))
	fw, err := mw.CreateFormFile("files", "notes.txt")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("hello"))
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", &buf)
	c.Request.Header.Set("Content-Type", mw.FormDataContentType())

	var in questionInput
	require.Nil(t, BindPayload(c, &in))
	assert.Equal(t, "ORDERING", in.Type)
}

func TestBindPayloadMultipartMissingField(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("payload", `{"question_type":"ORDERING"}`))
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", &buf)
	c.Request.Header.Set("Content-Type", mw.FormDataContentType())

	var in questionInput
	fields := BindPayload(c, &in)
	assert.Contains(t, fields, "title")
}
