package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"io/fs"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"article-api/config"
	"article-api/handlers"
	"article-api/helper"
	"article-api/metrics"
	"article-api/models"
	"article-api/rbac"
	"article-api/repositories"
	"article-api/routes"
	"article-api/services"
	"article-api/storage"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin-password"
)

type envelope[T any] struct {
	Code        int    `json:"code"`
	CodeMessage string `json:"code_message"`
	CodeType    string `json:"code_type"`
	Data        T      `json:"data"`
}

type IntegrationTestSuite struct {
	suite.Suite
	router     *gin.Engine
	adminToken string
	userToken  string
	userID     string
	uploadDir  string
}

func (suite *IntegrationTestSuite) SetupTest() {
	suite.setupRouter()

	suite.adminToken = suite.login(adminEmail, adminPassword)
	suite.registerTestUser()
}

func (suite *IntegrationTestSuite) setupRouter() {
	gin.SetMode(gin.TestMode)
	logg := slog.New(slog.NewTextHandler(io.Discard, nil))

	// Initialize repositories
	userRepo := repositories.NewMemoryUserRepository()
	articleRepo := repositories.NewMemoryArticleRepository()

	registry, err := config.LoadRoles("")
	suite.Require().NoError(err)

	assets, err := storage.NewFilesystem(suite.T().TempDir())
	suite.Require().NoError(err)
	suite.uploadDir = assets.Root()

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	httpHelper, err := helper.NewHTTPHelper(logg)
	suite.Require().NoError(err)

	// Initialize services
	planner := services.NewListingPlanner(articleRepo, 10, 100)
	authService := services.NewAuthService(userRepo, config.JWTConfig{
		Secret:     []byte("test-secret"),
		Expiration: time.Hour,
	}, logg)
	articleService := services.NewArticleService(articleRepo, planner, logg)
	imageService := services.NewImageService(assets, "", 1<<20, services.DefaultBreakerConfig(), logg)

	suite.Require().NoError(authService.EnsureAdmin(context.Background(), adminEmail, adminPassword))

	suite.router = routes.Setup(routes.Deps{
		Logger:         logg,
		Helper:         httpHelper,
		Gate:           rbac.NewGate(registry),
		AuthService:    authService,
		ArticleHandler: handlers.NewArticleHandler(articleService, imageService, planner, collector, 1<<20, httpHelper),
		AuthHandler:    handlers.NewAuthHandler(authService, httpHelper),
		HealthHandler:  handlers.NewHealthHandler(nil),
		Recorder:       collector,
		Gatherer:       reg,
		UploadDir:      assets.Root(),
	})
}

func (suite *IntegrationTestSuite) do(method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *IntegrationTestSuite) doJSON(method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		suite.Require().NoError(err)
		body = bytes.NewReader(b)
	}
	return suite.do(method, path, token, body, "application/json")
}

func (suite *IntegrationTestSuite) login(email, password string) string {
	w := suite.doJSON(http.MethodPost, "/v1/auth/login", "", models.LoginRequest{Email: email, Password: password})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp envelope[models.AuthResponse]
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.Token
}

func (suite *IntegrationTestSuite) registerTestUser() {
	w := suite.doJSON(http.MethodPost, "/v1/auth/register", "", models.RegisterRequest{
		Name:     "testuser",
		Email:    "test@example.com",
		Password: "password123",
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp envelope[models.AuthResponse]
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.userToken = resp.Data.Token
	suite.userID = resp.Data.User.ID
}

func (suite *IntegrationTestSuite) createArticle(name, content string) models.Article {
	w := suite.doJSON(http.MethodPost, "/v1/articles", suite.adminToken, map[string]string{
		"name":    name,
		"content": content,
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var article models.Article
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &article))
	return article
}

func (suite *IntegrationTestSuite) list(query string) models.PagedResult[models.Article] {
	w := suite.do(http.MethodGet, "/v1/articles"+query, suite.adminToken, nil, "")
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var page models.PagedResult[models.Article]
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &page))
	return page
}

func (suite *IntegrationTestSuite) TestCreateGetDeleteArticle() {
	article := suite.createArticle("A", "c1")
	suite.NotEmpty(article.ID)

	w := suite.do(http.MethodGet, "/v1/articles/"+article.ID, suite.adminToken, nil, "")
	suite.Equal(http.StatusOK, w.Code)

	var got map[string]interface{}
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &got))
	suite.Equal(map[string]interface{}{"id": article.ID, "name": "A", "content": "c1"}, got)

	w = suite.do(http.MethodDelete, "/v1/articles/"+article.ID, suite.adminToken, nil, "")
	suite.Equal(http.StatusNoContent, w.Code)
	suite.Empty(w.Body.String())

	w = suite.do(http.MethodGet, "/v1/articles/"+article.ID, suite.adminToken, nil, "")
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.do(http.MethodDelete, "/v1/articles/"+article.ID, suite.adminToken, nil, "")
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *IntegrationTestSuite) TestCreateArticleValidation() {
	w := suite.doJSON(http.MethodPost, "/v1/articles", suite.adminToken, map[string]string{"name": "only name"})
	suite.Equal(http.StatusBadRequest, w.Code)

	var resp struct {
		CodeType    string              `json:"code_type"`
		CodeMessage map[string][]string `json:"code_message"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("validationError", resp.CodeType)
	suite.Contains(resp.CodeMessage, "content")
	suite.NotContains(resp.CodeMessage, "name")

	w = suite.doJSON(http.MethodPost, "/v1/articles", suite.adminToken, map[string]string{"name": "   ", "content": "c"})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.do(http.MethodPost, "/v1/articles", suite.adminToken, strings.NewReader("{not json"), "application/json")
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *IntegrationTestSuite) TestListSortedByNameDescending() {
	first := suite.createArticle("Artikel Satu", "c1")
	second := suite.createArticle("ZArtikel Satu", "c2")

	page := suite.list("?sortBy=name:desc")

	suite.Require().Len(page.Results, 2)
	suite.Equal(second.ID, page.Results[0].ID)
	suite.Equal(first.ID, page.Results[1].ID)
	suite.Equal(int64(2), page.TotalResults)
	suite.Equal(1, page.TotalPages)
}

func (suite *IntegrationTestSuite) TestListSecondPageByID() {
	var created []models.Article
	for i := 1; i <= 4; i++ {
		created = append(created, suite.createArticle(fmt.Sprintf("article %d", i), "content"))
	}

	page := suite.list("?limit=2&page=2&sortBy=_id:asc")

	suite.Equal(2, page.Page)
	suite.Equal(2, page.Limit)
	suite.Equal(2, page.TotalPages)
	suite.Equal(int64(4), page.TotalResults)
	suite.Require().Len(page.Results, 2)
	suite.Equal(created[2].ID, page.Results[0].ID)
	suite.Equal(created[3].ID, page.Results[1].ID)
}

func (suite *IntegrationTestSuite) TestListDefaultsAndFilter() {
	page := suite.list("")
	suite.Equal(1, page.Page)
	suite.Equal(10, page.Limit)
	suite.Equal(0, page.TotalPages)
	suite.Equal(int64(0), page.TotalResults)
	suite.NotNil(page.Results)

	target := suite.createArticle("Artikel Satu", "c1")
	suite.createArticle("ZArtikel Satu", "c2")

	page = suite.list("?name=Artikel%20Satu")
	suite.Require().Len(page.Results, 1)
	suite.Equal(target.ID, page.Results[0].ID)
}

func (suite *IntegrationTestSuite) TestListRejectsBadParameters() {
	for _, query := range []string{
		"?page=0",
		"?page=abc",
		"?limit=0",
		"?limit=101",
		"?sortBy=password:asc",
		"?sortBy=name:sideways",
	} {
		w := suite.do(http.MethodGet, "/v1/articles"+query, suite.adminToken, nil, "")
		suite.Equal(http.StatusBadRequest, w.Code, query)
	}
}

func (suite *IntegrationTestSuite) TestUserCannotDeleteArticle() {
	article := suite.createArticle("A", "c1")

	w := suite.do(http.MethodDelete, "/v1/articles/"+article.ID, suite.userToken, nil, "")
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.do(http.MethodGet, "/v1/articles/"+article.ID, suite.userToken, nil, "")
	suite.Equal(http.StatusOK, w.Code)

	w = suite.doJSON(http.MethodPost, "/v1/articles", suite.userToken, map[string]string{"name": "x", "content": "y"})
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.doJSON(http.MethodPatch, "/v1/articles/"+article.ID, suite.userToken, map[string]string{"name": "x"})
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *IntegrationTestSuite) TestRequiresToken() {
	w := suite.do(http.MethodGet, "/v1/articles", "", nil, "")
	suite.Equal(http.StatusUnauthorized, w.Code)

	w = suite.do(http.MethodGet, "/v1/articles", "garbage", nil, "")
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *IntegrationTestSuite) TestInvalidArticleID() {
	for _, method := range []string{http.MethodGet, http.MethodPatch, http.MethodDelete} {
		w := suite.do(method, "/v1/articles/not-an-id", suite.adminToken, nil, "")
		suite.Equal(http.StatusBadRequest, w.Code, method)
	}
}

func (suite *IntegrationTestSuite) TestPatchIsPartial() {
	article := suite.createArticle("A", "c1")

	w := suite.doJSON(http.MethodPatch, "/v1/articles/"+article.ID, suite.adminToken, map[string]string{"name": "X"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var updated models.Article
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &updated))
	suite.Equal(article.ID, updated.ID)
	suite.Equal("X", updated.Name)
	suite.Equal("c1", updated.Content)

	w = suite.doJSON(http.MethodPatch, "/v1/articles/"+article.ID, suite.adminToken, map[string]string{"content": ""})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.doJSON(http.MethodPatch, "/v1/articles/0190b7a4-3c1e-7000-8000-000000000001", suite.adminToken, map[string]string{"name": "X"})
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *IntegrationTestSuite) pngBytes() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{G: 255, A: 255})
	var buf bytes.Buffer
	suite.Require().NoError(png.Encode(&buf, img))
	return buf.Bytes()
}

// multipartForm encodes fields plus an image part and returns the body with its content type.
func (suite *IntegrationTestSuite) multipartForm(fields map[string]string, img []byte) (*bytes.Buffer, string) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		suite.Require().NoError(mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile("image", "pic.png")
	suite.Require().NoError(err)
	_, err = part.Write(img)
	suite.Require().NoError(err)
	suite.Require().NoError(mw.Close())
	return &body, mw.FormDataContentType()
}

func (suite *IntegrationTestSuite) uploadedFiles() []string {
	var files []string
	err := filepath.WalkDir(suite.uploadDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	suite.Require().NoError(err)
	return files
}

func (suite *IntegrationTestSuite) TestCreateArticleWithImage() {
	pngData := suite.pngBytes()
	body, contentType := suite.multipartForm(map[string]string{"name": "With image", "content": "c1"}, pngData)

	w := suite.do(http.MethodPost, "/v1/articles", suite.adminToken, body, contentType)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var article models.Article
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &article))
	suite.Equal("With image", article.Name)
	suite.True(strings.HasPrefix(article.Image, "/uploads/articles/"), article.Image)

	w = suite.do(http.MethodGet, article.Image, "", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(pngData, w.Body.Bytes())
}

func (suite *IntegrationTestSuite) TestPatchMissingArticleWithImageWritesNothing() {
	body, contentType := suite.multipartForm(map[string]string{"name": "X"}, suite.pngBytes())

	w := suite.do(http.MethodPatch, "/v1/articles/0190b7a4-3c1e-7000-8000-000000000001", suite.adminToken, body, contentType)
	suite.Equal(http.StatusNotFound, w.Code, w.Body.String())
	suite.Empty(suite.uploadedFiles())
}

func (suite *IntegrationTestSuite) TestPatchArticleWithImage() {
	article := suite.createArticle("A", "c1")
	body, contentType := suite.multipartForm(nil, suite.pngBytes())

	w := suite.do(http.MethodPatch, "/v1/articles/"+article.ID, suite.adminToken, body, contentType)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var updated models.Article
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &updated))
	suite.Equal("A", updated.Name)
	suite.True(strings.HasPrefix(updated.Image, "/uploads/articles/"), updated.Image)
	suite.Len(suite.uploadedFiles(), 1)
}

func (suite *IntegrationTestSuite) TestCreateArticleRejectsNonImageUpload() {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	suite.Require().NoError(mw.WriteField("name", "n"))
	suite.Require().NoError(mw.WriteField("content", "c"))
	part, err := mw.CreateFormFile("image", "notes.txt")
	suite.Require().NoError(err)
	_, err = part.Write([]byte("plain text is not an image"))
	suite.Require().NoError(err)
	suite.Require().NoError(mw.Close())

	w := suite.do(http.MethodPost, "/v1/articles", suite.adminToken, &body, mw.FormDataContentType())
	suite.Equal(http.StatusBadRequest, w.Code)

	suite.Equal(int64(0), suite.list("").TotalResults)
}

func (suite *IntegrationTestSuite) TestAuthFlow() {
	w := suite.doJSON(http.MethodPost, "/v1/auth/register", "", models.RegisterRequest{
		Name:     "dup",
		Email:    "test@example.com",
		Password: "password123",
	})
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.doJSON(http.MethodPost, "/v1/auth/login", "", models.LoginRequest{Email: "test@example.com", Password: "wrong-password"})
	suite.Equal(http.StatusUnauthorized, w.Code)

	w = suite.do(http.MethodGet, "/v1/profile", suite.userToken, nil, "")
	suite.Equal(http.StatusOK, w.Code)

	var profile envelope[models.User]
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &profile))
	suite.Equal(suite.userID, profile.Data.ID)
	suite.Equal(models.RoleUser, profile.Data.Role)
	suite.NotContains(w.Body.String(), "password")
}

func (suite *IntegrationTestSuite) TestHealthAndMetrics() {
	w := suite.do(http.MethodGet, "/health", "", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"status":"healthy"}`, w.Body.String())

	suite.do(http.MethodDelete, "/v1/articles/0190b7a4-3c1e-7000-8000-000000000001", suite.userToken, nil, "")

	w = suite.do(http.MethodGet, "/metrics", "", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `article_api_authorization_denied_total{action="deleteArticles"} 1`)
	suite.Contains(w.Body.String(), "article_api_http_requests_total")
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}
