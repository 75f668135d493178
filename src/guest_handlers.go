package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"gala/src/db"
	"gala/src/middlewares"
	"gala/src/models"
	"gala/src/types"
	"gala/src/utils"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func guestHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/guests", func(ctx *gin.Context) {
			var query struct {
				Category string `form:"category" binding:"omitempty,guestcategory"`
				Status   string `form:"status"`
				Search   string `form:"q"`
			}
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var guests []models.Guest
			gdb := db.GetDb()
			q := gdb.Model(&models.Guest{}).Preload("Registration").Order("created_at desc")
			if query.Category != "" {
				q = q.Where("category = ?", query.Category)
			}
			if query.Status != "" {
				q = q.Where("status = ?", query.Status)
			}
			if query.Search != "" {
				like := "%" + strings.ToLower(query.Search) + "%"
				q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
			}
			if err := q.Find(&guests).Error; err != nil {
				log.Printf("Error retrieving Guests: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": guests})
		}).
		GET("/guests/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var guest models.Guest
			gdb := db.GetDb()
			if err := gdb.
				Where(&models.Guest{ID: params.ID}).
				Preload("Registration").
				Preload("Registration.Payment").
				Preload("Table").
				First(&guest).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": guest})
		}).
		POST("/guests", func(ctx *gin.Context) {
			var body types.CreateGuestRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			id, err := utils.CreateNewGuest(&body)
			if err != nil {
				log.Printf("error creating guest: %s", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"id": id})
		}).
		PUT("/guests/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdateGuestRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			updates := map[string]any{}
			if body.Name != nil {
				updates["name"] = *body.Name
			}
			if body.Email != nil {
				updates["email"] = strings.ToLower(strings.TrimSpace(*body.Email))
			}
			if body.Category != nil {
				updates["category"] = *body.Category
			}
			if len(updates) == 0 {
				ctx.Status(http.StatusNoContent)
				return
			}
			gdb := db.GetDb()
			if err := gdb.Transaction(func(tx *gorm.DB) error {
				return tx.Model(&models.Guest{}).Where("id = ?", params.ID).Updates(updates).Error
			}); err != nil {
				log.Printf("Error updating Guest [%d]: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		DELETE("/guests/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			gdb := db.GetDb()
			if err := gdb.Transaction(func(tx *gorm.DB) error {
				return tx.Delete(&models.Guest{ID: params.ID}).Error
			}); err != nil {
				log.Printf("Error deleting Guest [%d]: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		POST("/guests/:id/invite", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var guest models.Guest
			gdb := db.GetDb()
			if err := gdb.Where(&models.Guest{ID: params.ID}).First(&guest).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.Status(http.StatusBadRequest)
				return
			}
			hash, expiresAt, err := utils.IssueCredential(guest.Email)
			if err != nil {
				log.Printf("Error issuing credential for Guest [%d]: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := gdb.Transaction(func(tx *gorm.DB) error {
				return tx.
					Model(&models.Guest{}).
					Where("id = ? AND status = ?", guest.ID, string(types.GUEST_PENDING)).
					Update("status", string(types.GUEST_INVITED)).Error
			}); err != nil {
				log.Printf("Error updating Guest status [%d]: %s\n", params.ID, err.Error())
			}
			go func() {
				if err := utils.SendMagicLinkEmail(&guest, hash, expiresAt); err != nil {
					log.Printf("Error sending magic link to [%s]: %s\n", guest.Email, err.Error())
				}
			}()
			ctx.JSON(http.StatusOK, gin.H{"hash": hash, "expires_at": expiresAt.Format(time.RFC3339)})
		}).
		POST("/guests/:id/approve", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			session := middlewares.GetSession(ctx)
			if err := utils.ApproveGuest(params.ID, session); err != nil {
				log.Printf("Error approving Guest [%d]: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		POST("/guests/:id/reject", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			session := middlewares.GetSession(ctx)
			if err := utils.RejectGuest(params.ID, session); err != nil {
				log.Printf("Error rejecting Guest [%d]: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		POST("/guests/:id/cancel", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body struct {
				Reason string `json:"reason" binding:"required"`
			}
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			session := middlewares.GetSession(ctx)
			if err := utils.CancelRegistration(params.ID, body.Reason, session); err != nil {
				log.Printf("Error cancelling registration for Guest [%d]: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		GET("/guests/export", func(ctx *gin.Context) {
			var guests []models.Guest
			gdb := db.GetDb()
			if err := gdb.Order("id asc").Find(&guests).Error; err != nil {
				log.Printf("Error retrieving Guests for export: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.Header("Content-Type", "text/csv")
			ctx.Header("Content-Disposition", `attachment; filename="guests.csv"`)
			w := csv.NewWriter(ctx.Writer)
			w.Write([]string{"id", "name", "email", "category", "status"})
			for _, guest := range guests {
				w.Write([]string{
					fmt.Sprint(guest.ID),
					guest.Name,
					guest.Email,
					guest.Category,
					guest.Status,
				})
			}
			w.Flush()
		}).
		POST("/guests/import", func(ctx *gin.Context) {
			file, err := ctx.FormFile("file")
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			f, err := file.Open()
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			defer f.Close()
			r := csv.NewReader(f)
			records, err := r.ReadAll()
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			created := 0
			skipped := []string{}
			for i, record := range records {
				if i == 0 && isGuestCSVHeader(record) {
					continue
				}
				body := parseGuestCSVRow(record)
				if body == nil {
					skipped = append(skipped, fmt.Sprintf("row %d: too few columns", i+1))
					continue
				}
				if _, err := utils.CreateNewGuest(body); err != nil {
					skipped = append(skipped, fmt.Sprintf("row %d: %s", i+1, err.Error()))
					continue
				}
				created++
			}
			ctx.JSON(http.StatusOK, gin.H{"created": created, "skipped": skipped})
		})
	return g
}

// isGuestCSVHeader accepts both the minimal import header (name,...)
// and the header produced by the export endpoint (id,name,...).
func isGuestCSVHeader(record []string) bool {
	if len(record) == 0 {
		return false
	}
	first := strings.TrimSpace(record[0])
	return strings.EqualFold(first, "name") || strings.EqualFold(first, "id")
}

// parseGuestCSVRow maps a CSV row to a guest payload. Rows exported by
// the export endpoint carry a leading numeric id column, which is
// stripped. Returns nil for rows with too few columns.
func parseGuestCSVRow(record []string) *types.CreateGuestRequestBody {
	if len(record) >= 4 {
		if _, err := strconv.Atoi(strings.TrimSpace(record[0])); err == nil {
			record = record[1:]
		}
	}
	if len(record) < 3 {
		return nil
	}
	return &types.CreateGuestRequestBody{
		Name:     strings.TrimSpace(record[0]),
		Email:    strings.TrimSpace(record[1]),
		Category: strings.TrimSpace(record[2]),
	}
}
