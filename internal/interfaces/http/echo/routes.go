package echo

import "github.com/labstack/echo/v4"

func RegisterRoutes(e *echo.Echo, syncHandler *SyncHandler, drillHandler *DrillHandler) {
	v1 := e.Group("/api/v1")

	v1.POST("/sync", syncHandler.SyncUser)
	v1.POST("/sync/all", syncHandler.SyncAll)
	v1.GET("/sync/jobs/:id", syncHandler.GetJob)

	v1.GET("/drills", drillHandler.ListDrills)
	v1.GET("/drills/recent", drillHandler.RecentDrills)
	v1.GET("/drills/mastered", drillHandler.MasteredDrills)
	v1.GET("/drills/:id", drillHandler.GetDrill)
	v1.GET("/drills/:id/history", drillHandler.DrillHistory)
	v1.POST("/drills/:id/history", drillHandler.RecordHistory)
	v1.PATCH("/drills/:id", drillHandler.UpdateDrill)
}
