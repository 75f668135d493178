package middlewares

import (
	"gala/src/db"
	"gala/src/models"
	"gala/src/types"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

// AuthMiddleware authenticates a staff/admin session and stores a single
// SessionIdentity on the context. Core calls receive that identity
// explicitly; nothing downstream reads the session again.
func AuthMiddleware(ctx *gin.Context) {
	bearerToken := ctx.Request.Header.Get("Authorization")
	if !strings.HasPrefix(bearerToken, "Bearer") {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	reqToken := strings.Split(bearerToken, " ")[1]
	if reqToken == "" {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(reqToken, claims, func(t *jwt.Token) (any, error) {
		return jwtKey, nil
	})
	if err != nil {
		log.Printf("token error: %s\n", err.Error())
		if err == jwt.ErrSignatureInvalid || err == jwt.ErrTokenMalformed {
			ctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		ctx.AbortWithError(http.StatusUnauthorized, err)
		return
	}
	if !tkn.Valid {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	uid, err := strconv.Atoi(claims.Subject)
	if err != nil {
		log.Println("error parsing claims:", err.Error())
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	var user models.StaffUser
	gdb := db.GetDb()
	if err := gdb.
		Model(&models.StaffUser{}).
		Where(&models.StaffUser{ID: uint(uid)}).
		First(&user).Error; err != nil {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ctx.Set("id", user.ID)
	ctx.Set("email", user.Email)
	ctx.Set("role", user.Role)
	ctx.Set("session", types.SessionIdentity{UserID: user.ID, Role: user.Role})
}

// AdminOnly gates admin-only surfaces. Runs after AuthMiddleware.
func AdminOnly(ctx *gin.Context) {
	session := GetSession(ctx)
	if !session.IsAdmin() {
		ctx.AbortWithStatus(http.StatusForbidden)
		return
	}
}

// GetSession pulls the identity stored by AuthMiddleware.
func GetSession(ctx *gin.Context) types.SessionIdentity {
	v, ok := ctx.Get("session")
	if !ok {
		return types.SessionIdentity{}
	}
	session, ok := v.(types.SessionIdentity)
	if !ok {
		return types.SessionIdentity{}
	}
	return session
}
