package routes

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/iris-contrib/httpexpect/v2"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/httptest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartsquare-server/auth"
	"smartsquare-server/blobstore"
	"smartsquare-server/services"
	"smartsquare-server/storage/storagetest"
)

const testPassword = "Tr0ub4dor&3x!"

type apiFixture struct {
	t   *testing.T
	svc *services.Services
	e   *httpexpect.Expect
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	return newAPIWithOrigins(t, "http://localhost:3000")
}

func newAPIWithOrigins(t *testing.T, origins ...string) *apiFixture {
	t.Helper()
	db := storagetest.NewDB(t)
	svc := services.New(db, services.Options{Blobs: blobstore.NewMemory("memory://test")})
	issuer := auth.NewIssuer("test-secret", time.Hour)

	app := iris.New()
	Register(app, NewHandler(svc, issuer), origins)
	return &apiFixture{t: t, svc: svc, e: httptest.New(t, app)}
}

// register creates an account through the API and returns its token and id.
func (a *apiFixture) register(email, role string) (string, string) {
	a.t.Helper()
	body := a.e.POST("/api/auth/register").WithJSON(iris.Map{
		"email":     email,
		"fullName":  "User " + email,
		"userType":  role,
		"password":  testPassword,
		"password2": testPassword,
	}).Expect().Status(http.StatusCreated).JSON().Object().Raw()

	token, _ := body["token"].(string)
	require.NotEmpty(a.t, token)
	user, _ := body["user"].(map[string]interface{})
	id, _ := user["id"].(string)
	require.NotEmpty(a.t, id)
	return token, id
}

func bearer(token string) string { return "Bearer " + token }

func propertyBody() iris.Map {
	return iris.Map{
		"title":         "Two bedroom flat in Osu",
		"propertyType":  "APARTMENT",
		"pricePerMonth": "2500.00",
		"addressLine1":  "12 Oxford Street",
		"city":          "Accra",
		"bedrooms":      2,
		"bathrooms":     1,
		"availableFrom": "2025-04-01",
	}
}

func (a *apiFixture) activeListing(token string) string {
	a.t.Helper()
	created := a.e.POST("/api/properties").WithHeader("Authorization", bearer(token)).
		WithJSON(propertyBody()).Expect().Status(http.StatusCreated).JSON().Object().Raw()
	id, _ := created["id"].(string)
	require.NotEmpty(a.t, id)
	a.e.POST("/api/properties/"+id+"/status").WithHeader("Authorization", bearer(token)).
		WithJSON(iris.Map{"status": "ACTIVE"}).Expect().Status(http.StatusOK)
	return id
}

func TestRegisterAndLogin(t *testing.T) {
	a := newAPI(t)
	token, id := a.register("ama@example.com", "TENANT")

	me := a.e.GET("/api/users/me").WithHeader("Authorization", bearer(token)).
		Expect().Status(http.StatusOK).JSON().Object().Raw()
	assert.Equal(t, id, me["id"])
	assert.Equal(t, "ama@example.com", me["email"])
	assert.NotContains(t, me, "password")

	login := a.e.POST("/api/auth/login").WithJSON(iris.Map{"email": "AMA@example.com", "password": testPassword}).
		Expect().Status(http.StatusOK).JSON().Object().Raw()
	assert.NotEmpty(t, login["token"])

	a.e.POST("/api/auth/login").WithJSON(iris.Map{"email": "ama@example.com", "password": "wrong"}).
		Expect().Status(http.StatusUnauthorized)
}

func TestErrorMapping(t *testing.T) {
	a := newAPI(t)
	tenant, _ := a.register("tenant@example.com", "TENANT")

	dup := a.e.POST("/api/auth/register").WithJSON(iris.Map{
		"email":     "tenant@example.com",
		"fullName":  "Someone Else",
		"userType":  "TENANT",
		"password":  testPassword,
		"password2": testPassword,
	}).Expect().Status(http.StatusConflict).JSON().Object().Raw()
	assert.Equal(t, "UNIQUE_CONSTRAINT", dup["code"])
	assert.Equal(t, "email", dup["field"])

	invalid := a.e.POST("/api/auth/register").WithJSON(iris.Map{
		"email":     "new@example.com",
		"fullName":  "New",
		"userType":  "TENANT",
		"password":  testPassword,
		"password2": "different",
	}).Expect().Status(http.StatusBadRequest).JSON().Object().Raw()
	assert.Equal(t, "password", invalid["field"])

	a.e.GET("/api/users/me").Expect().Status(http.StatusUnauthorized)
	a.e.GET("/api/users/me").WithHeader("Authorization", "Bearer not-a-token").Expect().Status(http.StatusUnauthorized)

	a.e.POST("/api/properties").WithHeader("Authorization", bearer(tenant)).
		WithJSON(propertyBody()).Expect().Status(http.StatusForbidden)

	a.e.GET("/api/properties/00000000-0000-0000-0000-000000000001").Expect().Status(http.StatusNotFound)
	a.e.GET("/api/properties/not-a-uuid").Expect().Status(http.StatusBadRequest)
	a.e.POST("/api/applications").WithHeader("Authorization", bearer(tenant)).
		WithBytes([]byte("{")).WithHeader("Content-Type", "application/json").
		Expect().Status(http.StatusBadRequest)
}

func TestRentalFlow(t *testing.T) {
	a := newAPI(t)
	landlord, _ := a.register("landlord@example.com", "LANDLORD")
	tenant, tenantID := a.register("tenant@example.com", "TENANT")
	propertyID := a.activeListing(landlord)

	listed := a.e.GET("/api/properties").WithQuery("city", "Accra").Expect().Status(http.StatusOK).JSON().Array().Raw()
	assert.Len(t, listed, 1)

	detail := a.e.GET("/api/properties/" + propertyID).Expect().Status(http.StatusOK).JSON().Object().Raw()
	require.Contains(t, detail, "property")
	require.Contains(t, detail, "rating")

	app := a.e.POST("/api/applications").WithHeader("Authorization", bearer(tenant)).WithJSON(iris.Map{
		"propertyId":          propertyID,
		"message":             "I would like to rent this flat.",
		"moveInDate":          "2025-05-01",
		"leaseDurationMonths": 12,
	}).Expect().Status(http.StatusCreated).JSON().Object().Raw()
	appID, _ := app["id"].(string)
	assert.Equal(t, "PENDING", app["status"])

	a.e.POST("/api/applications/"+appID+"/respond").WithHeader("Authorization", bearer(tenant)).
		WithJSON(iris.Map{"status": "ACCEPTED"}).Expect().Status(http.StatusForbidden)

	responded := a.e.POST("/api/applications/"+appID+"/respond").WithHeader("Authorization", bearer(landlord)).
		WithJSON(iris.Map{"status": "ACCEPTED", "landlordResponse": "Welcome"}).
		Expect().Status(http.StatusOK).JSON().Object().Raw()
	assert.Equal(t, "ACCEPTED", responded["status"])
	assert.NotNil(t, responded["respondedAt"])

	count := a.e.GET("/api/notifications/unread-count").WithHeader("Authorization", bearer(tenant)).
		Expect().Status(http.StatusOK).JSON().Object().Raw()
	assert.EqualValues(t, 1, count["unread"])

	a.e.POST("/api/notifications/read-all").WithHeader("Authorization", bearer(tenant)).
		Expect().Status(http.StatusOK)

	conv := a.e.POST("/api/conversations").WithHeader("Authorization", bearer(landlord)).
		WithJSON(iris.Map{"participantId": tenantID, "propertyId": propertyID}).
		Expect().Status(http.StatusCreated).JSON().Object().Raw()
	convID, _ := conv["id"].(string)

	msg := a.e.POST("/api/conversations/"+convID+"/messages").WithHeader("Authorization", bearer(landlord)).
		WithJSON(iris.Map{"messageContent": "Keys are ready"}).
		Expect().Status(http.StatusCreated).JSON().Object().Raw()
	msgID, _ := msg["id"].(string)

	a.e.POST("/api/messages/"+msgID+"/read").WithHeader("Authorization", bearer(landlord)).
		Expect().Status(http.StatusForbidden)
	read := a.e.POST("/api/messages/"+msgID+"/read").WithHeader("Authorization", bearer(tenant)).
		Expect().Status(http.StatusOK).JSON().Object().Raw()
	assert.Equal(t, true, read["isRead"])

	review := a.e.POST("/api/reviews").WithHeader("Authorization", bearer(tenant)).WithJSON(iris.Map{
		"propertyId": propertyID,
		"rating":     5,
		"reviewText": "Great place",
		"reviewType": "PROPERTY",
	}).Expect().Status(http.StatusCreated).JSON().Object().Raw()
	assert.Equal(t, true, review["isVerifiedStay"])

	reviews := a.e.GET("/api/properties/" + propertyID + "/reviews").Expect().Status(http.StatusOK).JSON().Array().Raw()
	assert.Len(t, reviews, 1)
}

func TestUploadsAndAdmin(t *testing.T) {
	a := newAPI(t)
	landlord, _ := a.register("landlord@example.com", "LANDLORD")
	staff, _ := a.register("staff@example.com", "TENANT")
	_, err := a.svc.Users.SetStaff(context.Background(), "staff@example.com", true)
	require.NoError(t, err)
	propertyID := a.activeListing(landlord)

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	img := a.e.POST("/api/properties/"+propertyID+"/images").WithHeader("Authorization", bearer(landlord)).
		WithMultipart().WithFileBytes("image", "front.png", png).WithFormField("caption", "Front").
		Expect().Status(http.StatusCreated).JSON().Object().Raw()
	assert.Equal(t, true, img["isPrimary"])

	a.e.POST("/api/properties/"+propertyID+"/images").WithHeader("Authorization", bearer(landlord)).
		WithMultipart().WithFileBytes("image", "notes.txt", []byte("plain text")).
		Expect().Status(http.StatusBadRequest)

	v := a.e.POST("/api/verifications").WithHeader("Authorization", bearer(landlord)).
		WithMultipart().
		WithFormField("verificationType", "ID_CARD").
		WithFileBytes("documents", "front.pdf", []byte("%PDF-1.4 front")).
		WithFileBytes("documents", "back.pdf", []byte("%PDF-1.4 back")).
		Expect().Status(http.StatusCreated).JSON().Object().Raw()
	vID, _ := v["id"].(string)
	docs, _ := v["documents"].([]interface{})
	assert.Len(t, docs, 2)

	a.e.GET("/api/admin/verifications").WithHeader("Authorization", bearer(landlord)).
		Expect().Status(http.StatusForbidden)

	pending := a.e.GET("/api/admin/verifications").WithHeader("Authorization", bearer(staff)).
		Expect().Status(http.StatusOK).JSON().Array().Raw()
	assert.Len(t, pending, 1)

	approved := a.e.POST("/api/admin/verifications/"+vID+"/approve").WithHeader("Authorization", bearer(staff)).
		Expect().Status(http.StatusOK).JSON().Object().Raw()
	assert.Equal(t, "APPROVED", approved["status"])

	a.e.POST("/api/admin/verifications/"+vID+"/reject").WithHeader("Authorization", bearer(staff)).
		WithJSON(iris.Map{"rejectionReason": "too late"}).Expect().Status(http.StatusBadRequest)

	me := a.e.GET("/api/users/me").WithHeader("Authorization", bearer(landlord)).
		Expect().Status(http.StatusOK).JSON().Object().Raw()
	assert.Equal(t, true, me["isVerified"])

	verified := a.e.POST("/api/admin/properties/"+propertyID+"/verify").WithHeader("Authorization", bearer(staff)).
		Expect().Status(http.StatusOK).JSON().Object().Raw()
	assert.Equal(t, true, verified["isVerified"])
}

func TestCORSPreflight(t *testing.T) {
	a := newAPI(t)

	resp := a.e.OPTIONS("/api/properties").
		WithHeader("Origin", "http://localhost:3000").
		WithHeader("Access-Control-Request-Method", "POST").
		Expect().Status(http.StatusNoContent)
	assert.Equal(t, "http://localhost:3000", resp.Raw().Header.Get("Access-Control-Allow-Origin"))

	other := a.e.GET("/api/properties").WithHeader("Origin", "http://evil.example.com").
		Expect().Status(http.StatusOK)
	assert.Empty(t, other.Raw().Header.Get("Access-Control-Allow-Origin"))
}

func TestPublicViewsHideAccountDetails(t *testing.T) {
	a := newAPI(t)
	landlord, landlordID := a.register("landlord@example.com", "LANDLORD")
	tenant, tenantID := a.register("tenant@example.com", "TENANT")
	propertyID := a.activeListing(landlord)

	me := a.e.PATCH("/api/users/me").WithHeader("Authorization", bearer(tenant)).WithJSON(iris.Map{
		"phoneNumber": "+233201234567",
		"pushTokens":  []string{"ExponentPushToken[abc]"},
	}).Expect().Status(http.StatusOK).JSON().Object().Raw()
	assert.Equal(t, "+233201234567", me["phoneNumber"])
	assert.Equal(t, []interface{}{"ExponentPushToken[abc]"}, me["pushTokens"])

	a.e.POST("/api/reviews").WithHeader("Authorization", bearer(tenant)).WithJSON(iris.Map{
		"propertyId": propertyID,
		"rating":     4,
		"reviewText": "Quiet street",
		"reviewType": "PROPERTY",
	}).Expect().Status(http.StatusCreated)

	reviews := a.e.GET("/api/properties/" + propertyID + "/reviews").Expect().Status(http.StatusOK).JSON().Array().Raw()
	require.Len(t, reviews, 1)
	review, _ := reviews[0].(map[string]interface{})
	reviewer, _ := review["reviewer"].(map[string]interface{})
	require.NotEmpty(t, reviewer)
	assert.Equal(t, tenantID, reviewer["id"])
	for _, key := range []string{"email", "phoneNumber", "pushTokens", "isStaff", "lastLogin", "allowsNotifications"} {
		assert.NotContains(t, reviewer, key)
	}

	profile := a.e.GET("/api/users/"+tenantID).WithHeader("Authorization", bearer(landlord)).
		Expect().Status(http.StatusOK).JSON().Object().Raw()
	assert.Equal(t, "User tenant@example.com", profile["fullName"])
	assert.NotContains(t, profile, "pushTokens")
	assert.NotContains(t, profile, "phoneNumber")

	mine := a.e.GET("/api/users/me/properties").WithHeader("Authorization", bearer(landlord)).
		Expect().Status(http.StatusOK).JSON().Array().Raw()
	require.Len(t, mine, 1)
	owned, _ := mine[0].(map[string]interface{})
	assert.Equal(t, propertyID, owned["id"])
	assert.Equal(t, landlordID, owned["ownerId"])
}

func TestCORSWildcardOmitsCredentials(t *testing.T) {
	a := newAPIWithOrigins(t, "*")

	resp := a.e.GET("/api/properties").WithHeader("Origin", "http://anywhere.example.com").
		Expect().Status(http.StatusOK)
	assert.Equal(t, "*", resp.Raw().Header.Get("Access-Control-Allow-Origin"))
	assert.Empty(t, resp.Raw().Header.Get("Access-Control-Allow-Credentials"))

	named := newAPI(t)
	resp = named.e.GET("/api/properties").WithHeader("Origin", "http://localhost:3000").
		Expect().Status(http.StatusOK)
	assert.Equal(t, "true", resp.Raw().Header.Get("Access-Control-Allow-Credentials"))
}
