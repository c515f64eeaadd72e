package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/gig-marketplace-api/services"
)

// RegisterRoutes mounts the authenticated API on v1. auth runs before every
// route registered here.
func RegisterRoutes(v1 *gin.RouterGroup, registry *services.Registry, userInfo services.UserInfoProvider, auth gin.HandlerFunc) {
	users := NewUserController(registry.Accounts, userInfo)
	profiles := NewProfileController(registry.Accounts, registry.Verification)
	gigs := NewGigController(registry.Accounts, registry.Gigs)
	messages := NewMessageController(registry.Accounts, registry.Messages)
	references := NewReferenceController(registry.Accounts, registry.References)

	api := v1.Group("", auth)
	{
		api.POST("/users", users.CreateUser)
		api.GET("/users/me", users.GetMyProfile)
		api.PUT("/users/me", users.UpdateMyProfile)

		api.PUT("/profiles/client", profiles.SaveClientProfile)
		api.PUT("/profiles/provider", profiles.SaveProviderProfile)
		api.GET("/profiles/me/verification", profiles.GetMyVerification)
		api.GET("/providers/:id", profiles.GetProvider)

		api.GET("/categories", references.ListCategories)
		api.GET("/locations", references.ListLocations)

		api.POST("/gigs", gigs.CreateGig)
		api.GET("/gigs", gigs.ListGigs)
		api.GET("/gigs/:id", gigs.GetGig)
		api.POST("/gigs/:id/allocate", gigs.AllocateProvider)
		api.PATCH("/gigs/:id/status", gigs.UpdateStatus)
		api.POST("/gigs/:id/rating", gigs.RateGig)
		api.GET("/gigs/:id/events", gigs.ListEvents)
		api.POST("/gigs/:id/image", gigs.UploadImage)
		api.POST("/gigs/:id/messages", messages.SendMessage)
		api.GET("/gigs/:id/messages", messages.ListMessages)
	}

	admin := api.Group("/admin")
	{
		admin.GET("/verifications", profiles.ListVerifications)
		admin.PUT("/verifications/:role/:userId", profiles.SetVerification)
		admin.POST("/categories", references.CreateCategory)
		admin.DELETE("/categories/:id", references.DeleteCategory)
		admin.POST("/locations", references.CreateLocation)
		admin.DELETE("/locations/:id", references.DeleteLocation)
	}
}
