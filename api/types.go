package api

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	projectHandler    projectHandler
	blogHandler       blogHandler
	categoryHandler   categoryHandler
	subscriberHandler subscriberHandler
	authHandler       authHandler
}
