// Package router declares the HTTP surface and the role policy of every route.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/workboard-api/internal/access"
	"github.com/yukikurage/workboard-api/internal/handlers"
	"github.com/yukikurage/workboard-api/internal/middleware"
	"github.com/yukikurage/workboard-api/internal/models"
	"github.com/yukikurage/workboard-api/internal/observability"
)

// Deps are the collaborators the routes are wired to.
type Deps struct {
	Auth          *handlers.AuthHandler
	Users         *handlers.UserHandler
	Tasks         *handlers.TaskHandler
	Authenticator middleware.Authenticator
	Metrics       *observability.Metrics
	Log           logrus.FieldLogger
}

type route struct {
	method  string
	path    string
	public  bool
	policy  access.Policy
	handler gin.HandlerFunc
}

type group struct {
	prefix string
	policy access.Policy
	routes []route
}

var (
	managers = access.Require(models.RoleLeader, models.RoleAdmin, models.RoleSuperAdmin)
	admins   = access.Require(models.RoleAdmin, models.RoleSuperAdmin)
	anyone   = access.Require(models.RoleMember, models.RoleLeader, models.RoleAdmin, models.RoleSuperAdmin)
)

func table(d Deps) []group {
	return []group{
		{
			prefix: "/api/auth",
			routes: []route{
				{method: http.MethodPost, path: "/signup", policy: admins, handler: d.Auth.Signup},
				{method: http.MethodPost, path: "/login", public: true, handler: d.Auth.Login},
				{method: http.MethodPost, path: "/refresh-token", public: true, handler: d.Auth.RefreshToken},
				{method: http.MethodPost, path: "/logout", public: true, handler: d.Auth.Logout},
				{method: http.MethodGet, path: "/me", handler: d.Auth.GetCurrentUser},
			},
		},
		{
			prefix: "/api/users",
			routes: []route{
				{method: http.MethodGet, path: "", policy: managers, handler: d.Users.ListUsers},
				{method: http.MethodGet, path: "/:id", handler: d.Users.GetUser},
				{method: http.MethodPatch, path: "/:id", handler: d.Users.UpdateUser},
				{method: http.MethodPatch, path: "/:id/profile-image", handler: d.Users.UpdateProfileImage},
				{method: http.MethodDelete, path: "/:id", policy: admins, handler: d.Users.DeleteUser},
			},
		},
		{
			prefix: "/api/tasks",
			policy: managers,
			routes: []route{
				{method: http.MethodPost, path: "", handler: d.Tasks.CreateTask},
				{method: http.MethodGet, path: "", policy: anyone, handler: d.Tasks.ListTasks},
				{method: http.MethodGet, path: "/:id", policy: anyone, handler: d.Tasks.GetTask},
				{method: http.MethodPatch, path: "/:id", handler: d.Tasks.UpdateTask},
				{method: http.MethodDelete, path: "/:id", handler: d.Tasks.DeleteTask},
			},
		},
	}
}

// Register mounts every route on r. Each route's policy is resolved once
// here: a policy on the route overrides the group's.
func Register(r *gin.Engine, d Deps) {
	requireAuth := middleware.RequireAuth(d.Authenticator, d.Metrics, d.Log)

	for _, g := range table(d) {
		rg := r.Group(g.prefix)
		for _, rt := range g.routes {
			chain := []gin.HandlerFunc{}
			if !rt.public {
				chain = append(chain, requireAuth)
				if policy := access.Resolve(g.policy, rt.policy); policy.Declared() {
					chain = append(chain, middleware.RequireRoles(policy, d.Metrics))
				}
			}
			chain = append(chain, rt.handler)
			rg.Handle(rt.method, rt.path, chain...)
		}
	}
}
