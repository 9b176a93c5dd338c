package routes

import (
	"github.com/kataras/iris/v12"
)

// Register mounts the API under /api.
func Register(app *iris.Application, h *Handler, allowedOrigins []string) {
	app.UseRouter(CORS(allowedOrigins))

	api := app.Party("/api")
	api.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	api.Post("/auth/register", h.Register)
	api.Post("/auth/login", h.Login)

	api.Get("/properties", h.ListProperties)
	api.Get("/properties/{id}", h.OptionalAuth, h.GetProperty)
	api.Get("/properties/{id}/reviews", h.PropertyReviews)
	api.Get("/users/{id}/reviews", h.UserReviews)

	authed := api.Party("/", h.Authenticate)
	{
		authed.Get("/users/me", h.Me)
		authed.Patch("/users/me", h.UpdateMe)
		authed.Post("/users/me/picture", h.UploadProfilePicture)
		authed.Get("/users/me/properties", h.MyProperties)
		authed.Get("/users/{id}", h.GetUser)

		authed.Post("/properties", h.CreateProperty)
		authed.Patch("/properties/{id}", h.UpdateProperty)
		authed.Delete("/properties/{id}", h.DeleteProperty)
		authed.Post("/properties/{id}/status", h.ChangePropertyStatus)
		authed.Post("/properties/{id}/images", h.AddPropertyImage)
		authed.Post("/properties/{id}/images/{imageId}/primary", h.SetPrimaryImage)
		authed.Delete("/properties/{id}/images/{imageId}", h.DeletePropertyImage)
		authed.Post("/properties/{id}/amenities", h.AddAmenity)
		authed.Delete("/properties/{id}/amenities/{amenityId}", h.RemoveAmenity)
		authed.Post("/properties/{id}/documents", h.AddPropertyDocument)
		authed.Get("/properties/{id}/documents", h.ListPropertyDocuments)
		authed.Post("/properties/{id}/save", h.SaveProperty)
		authed.Delete("/properties/{id}/save", h.UnsaveProperty)
		authed.Get("/properties/{id}/applications", h.PropertyApplications)
		authed.Get("/saved-properties", h.SavedProperties)

		authed.Post("/applications", h.CreateApplication)
		authed.Get("/applications", h.MyApplications)
		authed.Get("/applications/{id}", h.GetApplication)
		authed.Post("/applications/{id}/respond", h.RespondToApplication)
		authed.Post("/applications/{id}/withdraw", h.WithdrawApplication)

		authed.Post("/conversations", h.StartConversation)
		authed.Get("/conversations", h.ListConversations)
		authed.Get("/conversations/{id}/messages", h.ListMessages)
		authed.Post("/conversations/{id}/messages", h.SendMessage)
		authed.Post("/messages/{id}/read", h.MarkMessageRead)
		authed.Get("/messages/unread-count", h.UnreadMessageCount)

		authed.Post("/reviews", h.CreateReview)

		authed.Get("/notifications", h.ListNotifications)
		authed.Post("/notifications/read-all", h.MarkAllNotificationsRead)
		authed.Get("/notifications/unread-count", h.UnreadNotificationCount)
		authed.Post("/notifications/{id}/read", h.MarkNotificationRead)

		authed.Post("/verifications", h.SubmitVerification)
		authed.Get("/verifications", h.MyVerifications)
		authed.Get("/verifications/{id}", h.GetVerification)
	}

	admin := api.Party("/admin", h.Authenticate, RequireStaff)
	{
		admin.Get("/verifications", h.PendingVerifications)
		admin.Post("/verifications/{id}/approve", h.ApproveVerification)
		admin.Post("/verifications/{id}/reject", h.RejectVerification)
		admin.Post("/properties/{id}/verify", h.VerifyProperty)
	}
}
