package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/SrZeh/get-useapp-sub002/src/db"
	"github.com/SrZeh/get-useapp-sub002/src/lib"
	"github.com/SrZeh/get-useapp-sub002/src/middlewares"
	"github.com/SrZeh/get-useapp-sub002/src/models"
	"github.com/SrZeh/get-useapp-sub002/src/utils"
	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"gorm.io/gorm"
)

func stripeWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhook/stripe", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		whsecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		event, err := webhook.ConstructEvent(payload, ctx.GetHeader("Stripe-Signature"), whsecret)
		if err != nil {
			log.Printf("Error verifying webhook signature: %s\n", err.Error())
			ctx.Status(http.StatusBadRequest)
			return
		}
		log.Printf("[StripeEvent] %s\n", event.Type)
		switch event.Type {
		case "payment_intent.succeeded":
			var pi stripe.PaymentIntent
			if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
				log.Printf("[Stripe] Error parsing PaymentIntent: %s\n", err.Error())
				break
			}
			log.Printf("[PaymentIntent] ID: %s %s\n", pi.ID, pi.Status)
			id := pi.Metadata["reservation_id"]
			atoi, err := strconv.Atoi(id)
			if err != nil {
				log.Printf("Could not read reservation id for PaymentIntent %s: %s\n", pi.ID, err.Error())
				break
			}
			if _, err := utils.ConfirmPayment(uint(atoi), pi.ID, pi.AmountReceived); err != nil {
				log.Printf("Error confirming payment for reservation %d: %s\n", atoi, err.Error())
			}
		case "account.updated":
			var acc stripe.Account
			if err := json.Unmarshal(event.Data.Raw, &acc); err != nil {
				log.Printf("[Stripe] Error parsing Account: %s\n", err.Error())
				break
			}
			ready := len(acc.Requirements.Errors) == 0 &&
				acc.ChargesEnabled &&
				acc.PayoutsEnabled &&
				acc.DetailsSubmitted
			log.Printf("[Account] %s payouts ready: %v\n", acc.ID, ready)
		}
		ctx.Status(http.StatusNoContent)
	})

	stripeAuth := apiv1.Group("/stripe")
	stripeAuth.Use(middlewares.AuthMiddleware)
	stripeAuth.
		GET("/account", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			var user struct {
				StripeAccountID *string `json:"account_id,omitempty"`
			}
			db := db.GetDb()
			if err := db.
				Model(&models.User{}).
				Where(&models.User{ID: userId}).
				Select("StripeAccountID").
				Scan(&user).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": &user.StripeAccountID})
		}).
		POST("/onboarding", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			var user models.User
			var accLinkURL string
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				err := tx.Model(&models.User{}).Where("id = ?", userId).First(&user).Error
				if err != nil {
					return err
				}
				sc := lib.GetStripeClient()
				acc, err := sc.V1Accounts.Create(context.Background(), &stripe.AccountCreateParams{
					Type:  stripe.String("express"),
					Email: stripe.String(user.Email),
				})
				if err != nil {
					return err
				}
				accLink, err := sc.V1AccountLinks.Create(context.Background(), &stripe.AccountLinkCreateParams{
					Account:    stripe.String(acc.ID),
					Type:       stripe.String("account_onboarding"),
					ReturnURL:  stripe.String(fmt.Sprint(os.Getenv("APP_HOST"), "/dashboard")),
					RefreshURL: stripe.String(fmt.Sprint(os.Getenv("APP_HOST"), "/callback/account/refresh")),
				})
				if err != nil {
					return err
				}
				err = tx.Model(&models.User{}).Where("id = ?", user.ID).Update("stripe_account_id", acc.ID).Error
				if err != nil {
					return err
				}
				accLinkURL = accLink.URL
				return nil
			})
			if err != nil {
				log.Printf("Error while setting up Stripe Account: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"url": accLinkURL})
		})
	return apiv1
}
