package handler

import "github.com/gin-gonic/gin"

// Handlers groups the HTTP handlers of the service
type Handlers struct {
	Chat      *ChatHandler
	Recommend *RecommendHandler
	Listings  *ListingHandler
	// Submissions is optional; the route is only mounted when set
	Submissions *SubmissionHandler
}

// Register mounts every route on router
func (h Handlers) Register(router gin.IRouter) {
	router.POST("/recommend", h.Recommend.Recommend)
	router.GET("/get-data", h.Listings.GetData)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/listings/:id", h.Listings.GetListing)
		apiV1.POST("/recommend", h.Recommend.Recommend)

		chat := apiV1.Group("/chat/sessions")
		chat.POST("", h.Chat.Create)
		chat.GET("/:id", h.Chat.Get)
		chat.DELETE("/:id", h.Chat.Delete)
		chat.POST("/:id/commands", h.Chat.Command)
		chat.GET("/:id/stream", h.Chat.Stream)
		chat.GET("/:id/recommendations", h.Chat.Recommendations)

		if h.Submissions != nil {
			apiV1.GET("/submissions/similar", h.Submissions.Similar)
		}
	}
}
