package handlers

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// currentUserID reads the identity the auth middleware stored.
func currentUserID(c echo.Context) (primitive.ObjectID, bool) {
	userID, ok := c.Get("userID").(primitive.ObjectID)
	return userID, ok
}

// pathObjectID parses the named path parameter as an ObjectID.
func pathObjectID(c echo.Context, name string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(c.Param(name))
}
