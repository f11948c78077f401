package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/workboard-api/internal/access"
	"github.com/yukikurage/workboard-api/internal/constants"
	"github.com/yukikurage/workboard-api/internal/dto"
	"github.com/yukikurage/workboard-api/internal/models"
	"github.com/yukikurage/workboard-api/internal/repository"
	"github.com/yukikurage/workboard-api/internal/services"
	"github.com/yukikurage/workboard-api/internal/testutil"
	"github.com/yukikurage/workboard-api/internal/utils"
	"gorm.io/gorm"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TaskHandler
	router  *gin.Engine

	leader *models.User
	member *models.User
	other  *models.User
}

type taskEnvelope struct {
	Success bool                  `json:"success"`
	Data    dto.TaskDTO           `json:"data"`
	Meta    *utils.PaginationMeta `json:"meta"`
}

type taskListEnvelope struct {
	Data []dto.TaskDTO        `json:"data"`
	Meta utils.PaginationMeta `json:"meta"`
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.db = testutil.NewDB(suite.T())

	taskService := services.NewTaskService(
		repository.NewTaskRepository(suite.db),
		repository.NewUserRepository(suite.db),
		newNullLogger(),
	)
	suite.handler = NewTaskHandler(taskService, newNullLogger())

	suite.leader = testutil.CreateUser(suite.T(), suite.db, "leader@example.com", models.RoleLeader)
	suite.member = testutil.CreateUser(suite.T(), suite.db, "member@example.com", models.RoleMember)
	suite.other = testutil.CreateUser(suite.T(), suite.db, "other@example.com", models.RoleMember)

	suite.router = gin.New()
	suite.router.Use(suite.actAs())
	suite.router.GET("/api/tasks", suite.handler.ListTasks)
	suite.router.GET("/api/tasks/:id", suite.handler.GetTask)
	suite.router.POST("/api/tasks", suite.handler.CreateTask)
	suite.router.PATCH("/api/tasks/:id", suite.handler.UpdateTask)
	suite.router.DELETE("/api/tasks/:id", suite.handler.DeleteTask)
}

// actAs installs the principal named by the X-Test-User header.
func (suite *TaskHandlerTestSuite) actAs() gin.HandlerFunc {
	return func(c *gin.Context) {
		users := map[string]*models.User{"leader": suite.leader, "member": suite.member, "other": suite.other}
		if u, ok := users[c.GetHeader("X-Test-User")]; ok {
			c.Set(constants.ContextKeyPrincipal, access.NewPrincipal(u))
		}
		c.Next()
	}
}

func (suite *TaskHandlerTestSuite) do(user string, req *http.Request) *httptest.ResponseRecorder {
	req.Header.Set("X-Test-User", user)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *TaskHandlerTestSuite) TestCreateTask() {
	w := suite.do("leader", jsonRequest(suite.T(), http.MethodPost, "/api/tasks", map[string]interface{}{
		"title":          "Ship release",
		"priority":       "HIGH",
		"assigned_to_id": suite.member.ID,
	}))
	suite.Require().Equal(http.StatusCreated, w.Code)

	var response taskEnvelope
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.True(response.Success)
	suite.Equal("Ship release", response.Data.Title)
	suite.Equal(models.TaskPriorityHigh, response.Data.Priority)
	suite.Equal(suite.leader.ID, response.Data.AssignedByID)
	suite.Require().NotNil(response.Data.AssignedTo)
	suite.Equal(suite.member.Email, response.Data.AssignedTo.Email)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_UnknownAssignee() {
	w := suite.do("leader", jsonRequest(suite.T(), http.MethodPost, "/api/tasks", map[string]interface{}{
		"title":          "Nobody",
		"assigned_to_id": "missing",
	}))
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_InvalidBody() {
	w := suite.do("leader", jsonRequest(suite.T(), http.MethodPost, "/api/tasks", map[string]interface{}{
		"description": "no title",
	}))
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestListTasks_PaginationAndVisibility() {
	base := time.Now()
	for i := 1; i <= 12; i++ {
		testutil.CreateTask(suite.T(), suite.db, fmt.Sprintf("task-%02d", i), suite.member, suite.leader, base.Add(-time.Duration(i)*time.Second))
	}
	testutil.CreateTask(suite.T(), suite.db, "not yours", suite.other, suite.leader, base)

	w := suite.do("member", httptest.NewRequest(http.MethodGet, "/api/tasks?page=2&limit=5", nil))
	suite.Require().Equal(http.StatusOK, w.Code)

	var response taskListEnvelope
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal(int64(12), response.Meta.Total)
	suite.Equal(3, response.Meta.TotalPages)
	suite.Require().Len(response.Data, 5)
	suite.Equal("task-06", response.Data[0].Title)

	w = suite.do("member", httptest.NewRequest(http.MethodGet, "/api/tasks?page=abc", nil))
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.do("member", httptest.NewRequest(http.MethodGet, "/api/tasks?status=ARCHIVED", nil))
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestGetTask_StatusCodes() {
	task := testutil.CreateTask(suite.T(), suite.db, "private", suite.member, suite.leader, time.Now())

	suite.Equal(http.StatusOK, suite.do("member", httptest.NewRequest(http.MethodGet, "/api/tasks/"+task.ID, nil)).Code)
	suite.Equal(http.StatusForbidden, suite.do("other", httptest.NewRequest(http.MethodGet, "/api/tasks/"+task.ID, nil)).Code)
	suite.Equal(http.StatusNotFound, suite.do("other", httptest.NewRequest(http.MethodGet, "/api/tasks/missing", nil)).Code)
	suite.Equal(http.StatusUnauthorized, suite.do("", httptest.NewRequest(http.MethodGet, "/api/tasks/"+task.ID, nil)).Code)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask() {
	task := testutil.CreateTask(suite.T(), suite.db, "draft", suite.member, suite.leader, time.Now())

	w := suite.do("member", jsonRequest(suite.T(), http.MethodPatch, "/api/tasks/"+task.ID, map[string]interface{}{"status": "DONE"}))
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.do("leader", jsonRequest(suite.T(), http.MethodPatch, "/api/tasks/"+task.ID, map[string]interface{}{"status": "IN_PROGRESS", "title": "final"}))
	suite.Require().Equal(http.StatusOK, w.Code)

	var response taskEnvelope
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal(models.TaskStatusInProgress, response.Data.Status)
	suite.Equal("final", response.Data.Title)
	suite.Equal(models.TaskPriorityMedium, response.Data.Priority)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask() {
	task := testutil.CreateTask(suite.T(), suite.db, "obsolete", suite.member, suite.leader, time.Now())

	suite.Equal(http.StatusForbidden, suite.do("member", httptest.NewRequest(http.MethodDelete, "/api/tasks/"+task.ID, nil)).Code)
	suite.Equal(http.StatusOK, suite.do("leader", httptest.NewRequest(http.MethodDelete, "/api/tasks/"+task.ID, nil)).Code)
	suite.Equal(http.StatusNotFound, suite.do("leader", httptest.NewRequest(http.MethodGet, "/api/tasks/"+task.ID, nil)).Code)
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
