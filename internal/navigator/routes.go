// Package navigator decides where to go after a wizard commit or quick action.
package navigator

import (
	"fmt"
	"strconv"
)

// Application routes of the web client. Every authenticated route lives under /app.
const (
	RouteDashboard     = "/app"
	RouteProperties    = "/app/properties"
	RouteInspections   = "/app/inspections"
	RouteNewInspection = "/app/inspections/new"
)

// PropertyDetail is the route of one property.
func PropertyDetail(id int64) string {
	return RouteProperties + "/" + strconv.FormatInt(id, 10)
}

// InspectionDetail is the route of one inspection.
func InspectionDetail(id int64) string {
	return RouteInspections + "/" + strconv.FormatInt(id, 10)
}

// NewInspectionFor is the wizard route with a preselected property.
func NewInspectionFor(propertyID int64) string {
	return fmt.Sprintf("%s?property=%d", RouteNewInspection, propertyID)
}
