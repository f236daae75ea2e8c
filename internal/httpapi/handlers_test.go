package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/quillforge/docpdf/internal/logging"
)

func basicCompileRequest() CompileRequest {
	return CompileRequest{
		Sections: []SectionDTO{{
			PageWidth: 612, PageHeight: 792,
			MarginTop: 72, MarginBottom: 72, MarginLeft: 72, MarginRight: 72,
			HeaderOffset: 36, FooterOffset: 36,
		}},
		Body: []ElementDTO{
			{Kind: "paragraph", Attrs: map[string]any{"text": "Hello from the HTTP surface."}},
		},
		Headers: map[string][]ElementDTO{"default": {{Kind: "paragraph", Attrs: map[string]any{"text": "Doc title"}}}},
	}
}

// CompileHandlerSuite exercises POST /v1/compile behind a real gin router,
// mirroring the teacher's test/integration_test.go suite shape.
type CompileHandlerSuite struct {
	suite.Suite
	router *gin.Engine
}

func (s *CompileHandlerSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	RegisterRoutes(s.router, logging.Discard())
}

func (s *CompileHandlerSuite) post(body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/compile", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *CompileHandlerSuite) TestReturnsPDF() {
	body, err := json.Marshal(basicCompileRequest())
	s.Require().NoError(err)

	w := s.post(body)

	s.Equal(http.StatusOK, w.Code, "body=%s", w.Body.String())
	s.Equal("application/pdf", w.Header().Get("Content-Type"))
	s.True(strings.HasPrefix(w.Body.String(), "%PDF-"), "response body does not look like a PDF")
}

func (s *CompileHandlerSuite) TestRejectsInvalidJSON() {
	req := httptest.NewRequest(http.MethodPost, "/v1/compile", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *CompileHandlerSuite) TestRejectsBadMediaEncoding() {
	reqBody := basicCompileRequest()
	reqBody.Media = map[string]string{"media/image1.png": "not-valid-base64!!"}
	body, err := json.Marshal(reqBody)
	s.Require().NoError(err)

	w := s.post(body)

	s.Equal(http.StatusBadRequest, w.Code, "body=%s", w.Body.String())
}

func TestCompileHandlerSuite(t *testing.T) {
	suite.Run(t, new(CompileHandlerSuite))
}
