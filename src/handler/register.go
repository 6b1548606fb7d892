package handler

import (
	"context"
	"reflect"
	"strings"

	"github.com/butecobot/challenge-api/src/service"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterRoutes wires middlewares, custom validations and every challenge
// route onto the router.
func RegisterRoutes(ctx context.Context, router *gin.Engine, challengeService *service.ChallengeService) {
	registerValidations()
	SetMiddlewares(ctx, router)

	challengeHandler := NewChallengeHandler(challengeService)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", HandleHealthCheck)
	}

	challenge := router.Group("/challenge")
	{
		challenge.POST("/create", challengeHandler.CreateChallenge)
		challenge.POST("/:id/accept", challengeHandler.AcceptChallenge)
		challenge.POST("/:id/reject", challengeHandler.RejectChallenge)
		challenge.POST("/:id/increment", challengeHandler.IncrementScore)
		challenge.POST("/:id/close", challengeHandler.CloseChallenge)
		challenge.GET("/:id", challengeHandler.GetChallengeByID)
		challenge.GET("/user/:userId/active", challengeHandler.GetActiveChallengesForUser)
		challenge.GET("/user/:userId/pending", challengeHandler.GetPendingChallengesForUser)
		challenge.GET("/user/:userId/all", challengeHandler.GetAllChallengesForUser)
		challenge.GET("/channel/:channelId/active", challengeHandler.GetActiveChallengesInChannel)
	}
}

// registerValidations adds the notblank rule used by the request DTOs and
// makes validation errors report JSON field names.
// binding:"required" alone lets whitespace-only strings through.
func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}
