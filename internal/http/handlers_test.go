package http_test

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tazhibayda/bootcamp-service/internal/domain"
	"github.com/tazhibayda/bootcamp-service/internal/queue"
)

type listResp struct {
	Success    bool
	Count      int
	Pagination struct {
		Next *struct{ Page, Limit int }
		Prev *struct{ Page, Limit int }
	}
	Data []map[string]any
}

func Test_Register_Login_Me(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	tok := env.register("John Doe", "John@Gmail.com", "")
	require.NotEmpty(t, tok)

	w := env.do("POST", "/api/v1/auth/login", "", `{"email":"john@gmail.com","password":"123456"}`)
	require.Equal(t, 200, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Set-Cookie"), "token=")

	w = env.do("POST", "/api/v1/auth/login", "", `{"email":"john@gmail.com","password":"wrong1"}`)
	assert.Equal(t, 401, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Invalid credentials"}`, w.Body.String())

	w = env.do("POST", "/api/v1/auth/login", "", `{"email":"john@gmail.com"}`)
	assert.Equal(t, 400, w.Code)

	w = env.do("GET", "/api/v1/auth/me", tok, nil)
	require.Equal(t, 200, w.Code, w.Body.String())
	me := decode[struct{ Data map[string]any }](t, w).Data
	assert.Equal(t, "john@gmail.com", me["email"])
	assert.Equal(t, "user", me["role"])
	assert.NotContains(t, me, "password")

	evs := env.Events.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, queue.KeyUserRegistered, evs[0].Key)

	w = env.do("POST", "/api/v1/auth/register", "", `{"name":"Again","email":"john@gmail.com","password":"123456"}`)
	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "Duplicate field value entered")
}

func Test_Register_RejectsAdminRole(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	w := env.do("POST", "/api/v1/auth/register", "", `{"name":"Eve","email":"eve@gmail.com","password":"123456","role":"admin"}`)
	assert.Equal(t, 400, w.Code, w.Body.String())
}

func Test_Bootcamps_CreateListAndOwnership(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	pub := env.register("Publisher", "pub@gmail.com", domain.RolePublisher)
	other := env.register("Other", "other@gmail.com", domain.RolePublisher)
	user := env.register("User", "user@gmail.com", domain.RoleUser)

	// plain users cannot publish
	w := env.do("POST", "/api/v1/bootcamps", user, `{}`)
	assert.Equal(t, 403, w.Code)
	assert.Contains(t, w.Body.String(), "user role is not authorized")

	id := env.bootcamp(pub, "Devworks Bootcamp")

	w = env.do("GET", "/api/v1/bootcamps/"+id, "", nil)
	require.Equal(t, 200, w.Code, w.Body.String())
	b := decode[struct{ Data map[string]any }](t, w).Data
	assert.Equal(t, "devworks-bootcamp", b["slug"])
	loc := b["location"].(map[string]any)
	assert.Equal(t, "Boston", loc["city"])
	assert.NotContains(t, b, "address")

	// one bootcamp per publisher
	w = env.do("POST", "/api/v1/bootcamps", pub, map[string]any{
		"name": "Second Camp", "description": "d", "address": bostonAddr, "careers": []string{"Business"},
	})
	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "has already published a bootcamp")

	// only the owner (or an admin) may change it
	w = env.do("PUT", "/api/v1/bootcamps/"+id, other, `{"housing":true}`)
	assert.Equal(t, 403, w.Code)
	assert.Contains(t, w.Body.String(), "is not authorized to update bootcamp")

	w = env.do("PUT", "/api/v1/bootcamps/"+id, pub, `{"name":"Devcentral Camp"}`)
	require.Equal(t, 200, w.Code, w.Body.String())
	assert.Equal(t, "devcentral-camp", decode[struct{ Data map[string]any }](t, w).Data["slug"])

	admin := env.admin()
	env.bootcamp(admin, "ModernTech Camp")
	env.bootcamp(admin, "Codemasters Camp")

	w = env.do("GET", "/api/v1/bootcamps?select=name&sort=name&limit=2", "", nil)
	require.Equal(t, 200, w.Code, w.Body.String())
	page := decode[listResp](t, w)
	assert.Equal(t, 2, page.Count)
	require.NotNil(t, page.Pagination.Next)
	assert.Equal(t, 2, page.Pagination.Next.Page)
	assert.Nil(t, page.Pagination.Prev)
	assert.Equal(t, "Codemasters Camp", page.Data[0]["name"])
	assert.NotContains(t, page.Data[0], "description")

	w = env.do("GET", "/api/v1/bootcamps?select=name&sort=name&limit=2&page=2", "", nil)
	page = decode[listResp](t, w)
	assert.Equal(t, 1, page.Count)
	assert.Nil(t, page.Pagination.Next)
	require.NotNil(t, page.Pagination.Prev)

	w = env.do("GET", "/api/v1/bootcamps/radius/02118/10", "", nil)
	require.Equal(t, 200, w.Code, w.Body.String())
	assert.Equal(t, 3, decode[listResp](t, w).Count)

	w = env.do("GET", "/api/v1/bootcamps/123", "", nil)
	assert.Equal(t, 404, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Resource not found with id of 123"}`, w.Body.String())
}

func Test_Courses_AverageCost(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	pub := env.register("Publisher", "pub@gmail.com", domain.RolePublisher)
	id := env.bootcamp(pub, "Devworks Bootcamp")

	addCourse := func(title string, tuition float64) string {
		w := env.do("POST", "/api/v1/bootcamps/"+id+"/courses", pub, map[string]any{
			"title": title, "description": "d", "weeks": "8", "tuition": tuition, "minimumSkill": "beginner",
		})
		require.Equal(t, 201, w.Code, w.Body.String())
		return decode[struct{ Data struct{ ID string `json:"_id"` } }](t, w).Data.ID
	}
	cost := func() any {
		w := env.do("GET", "/api/v1/bootcamps/"+id, "", nil)
		return decode[struct{ Data map[string]any }](t, w).Data["averageCost"]
	}

	first := addCourse("Front End", 8000)
	assert.Equal(t, 8000.0, cost())
	addCourse("Full Stack", 10001)
	assert.Equal(t, 9010.0, cost())

	w := env.do("GET", "/api/v1/bootcamps/"+id+"/courses", "", nil)
	require.Equal(t, 200, w.Code)
	assert.Equal(t, 2, decode[listResp](t, w).Count)

	w = env.do("GET", "/api/v1/courses?tuition[gt]=9000&select=title,bootcamp", "", nil)
	require.Equal(t, 200, w.Code, w.Body.String())
	page := decode[listResp](t, w)
	require.Equal(t, 1, page.Count)
	assert.Equal(t, "Devworks Bootcamp", page.Data[0]["bootcamp"].(map[string]any)["name"])

	w = env.do("DELETE", "/api/v1/courses/"+first, pub, nil)
	require.Equal(t, 200, w.Code, w.Body.String())
	assert.Equal(t, 10010.0, cost())

	w = env.do("GET", "/api/v1/courses?tuition[gt]=cheap", "", nil)
	assert.Equal(t, 400, w.Code)
}

func Test_Reviews_RatingAndUniqueness(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	pub := env.register("Publisher", "pub@gmail.com", domain.RolePublisher)
	id := env.bootcamp(pub, "Devworks Bootcamp")
	alice := env.register("Alice", "alice@gmail.com", domain.RoleUser)
	bob := env.register("Bob", "bob@gmail.com", domain.RoleUser)

	review := func(tok string, rating int) int {
		w := env.do("POST", "/api/v1/bootcamps/"+id+"/reviews", tok, map[string]any{
			"title": "Review", "text": "Solid", "rating": rating,
		})
		return w.Code
	}

	assert.Equal(t, 403, review(pub, 9), "publishers cannot review")
	assert.Equal(t, 201, review(alice, 8))
	assert.Equal(t, 201, review(bob, 5))
	assert.Equal(t, 400, review(alice, 10), "one review per user per bootcamp")

	w := env.do("GET", "/api/v1/bootcamps/"+id, "", nil)
	assert.Equal(t, 6.5, decode[struct{ Data map[string]any }](t, w).Data["averageRating"])
}

func Test_ForgotAndResetPassword(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	env.register("John Doe", "john@gmail.com", "")

	w := env.do("POST", "/api/v1/auth/forgetpassword", "", `{"email":"nobody@gmail.com"}`)
	assert.Equal(t, 404, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"There is no user with that email"}`, w.Body.String())

	w = env.do("POST", "/api/v1/auth/forgetpassword", "", `{"email":"john@gmail.com"}`)
	require.Equal(t, 200, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true,"data":"Email sent"}`, w.Body.String())

	m := env.Mail.last()
	assert.Equal(t, "john@gmail.com", m.To)
	assert.Equal(t, "Password reset token", m.Subject)
	i := strings.Index(m.Text, "/api/v1/auth/resetpassword/")
	require.GreaterOrEqual(t, i, 0, m.Text)
	token := strings.TrimSpace(m.Text[i+len("/api/v1/auth/resetpassword/"):])
	require.Len(t, token, 40)

	w = env.do("PUT", "/api/v1/auth/resetpassword/"+token, "", `{"password":"newpass"}`)
	require.Equal(t, 200, w.Code, w.Body.String())
	assert.NotEmpty(t, decode[struct{ Token string }](t, w).Token)

	// single use
	w = env.do("PUT", "/api/v1/auth/resetpassword/"+token, "", `{"password":"another"}`)
	assert.Equal(t, 400, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Invalid token"}`, w.Body.String())

	w = env.do("POST", "/api/v1/auth/login", "", `{"email":"john@gmail.com","password":"newpass"}`)
	assert.Equal(t, 200, w.Code)
}

func (e *testEnv) forgot(email string) string {
	e.T.Helper()
	w := e.do("POST", "/api/v1/auth/forgetpassword", "", `{"email":"`+email+`"}`)
	require.Equal(e.T, 200, w.Code, w.Body.String())
	text := e.Mail.last().Text
	i := strings.Index(text, "/api/v1/auth/resetpassword/")
	require.GreaterOrEqual(e.T, i, 0, text)
	return strings.TrimSpace(text[i+len("/api/v1/auth/resetpassword/"):])
}

func Test_ResetPassword_Expiry(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	env.register("John Doe", "john@gmail.com", "")

	token := env.forgot("john@gmail.com")
	env.Clock.Add(9 * time.Minute)
	w := env.do("PUT", "/api/v1/auth/resetpassword/"+token, "", `{"password":"newpass"}`)
	require.Equal(t, 200, w.Code, w.Body.String())

	token = env.forgot("john@gmail.com")
	env.Clock.Add(11 * time.Minute)
	w = env.do("PUT", "/api/v1/auth/resetpassword/"+token, "", `{"password":"another"}`)
	assert.Equal(t, 400, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Invalid token"}`, w.Body.String())

	w = env.do("POST", "/api/v1/auth/login", "", `{"email":"john@gmail.com","password":"newpass"}`)
	assert.Equal(t, 200, w.Code)
}

func Test_ForgotPassword_MailFailure(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	env.register("John Doe", "john@gmail.com", "")
	env.Mail.err = errors.New("smtp down")

	w := env.do("POST", "/api/v1/auth/forgetpassword", "", `{"email":"john@gmail.com"}`)
	assert.Equal(t, 500, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Email could not be sent"}`, w.Body.String())

	u, err := env.Store.FindUserWithPassword(env.Ctx, "john@gmail.com")
	require.NoError(t, err)
	assert.Empty(t, u.ResetPasswordToken)
	assert.Nil(t, u.ResetPasswordExpire)
}

func Test_Users_AdminOnly(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	user := env.register("User", "user@gmail.com", domain.RoleUser)
	w := env.do("GET", "/api/v1/users", user, nil)
	assert.Equal(t, 403, w.Code)

	admin := env.admin()
	w = env.do("POST", "/api/v1/users", admin, `{"name":"Kim","email":"kim@gmail.com","password":"123456","role":"publisher"}`)
	require.Equal(t, 201, w.Code, w.Body.String())

	w = env.do("GET", "/api/v1/users?role=publisher", admin, nil)
	require.Equal(t, 200, w.Code, w.Body.String())
	page := decode[listResp](t, w)
	require.Equal(t, 1, page.Count)
	assert.Equal(t, "kim@gmail.com", page.Data[0]["email"])
	assert.NotContains(t, page.Data[0], "password")
}

func Test_Logout_ClearsCookie(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	w := env.do("GET", "/api/v1/auth/logout", "", nil)
	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "token=none")
	assert.JSONEq(t, `{"success":true,"data":{}}`, w.Body.String())
}

func Test_UploadPhoto(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	pub := env.register("Publisher", "pub@gmail.com", domain.RolePublisher)
	id := env.bootcamp(pub, "Devworks Bootcamp")

	upload := func(field, filename string, content []byte) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, _ = fw.Write(content)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest("PUT", "/api/v1/bootcamps/"+id+"/photo", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+pub)
		w := httptest.NewRecorder()
		env.Router.ServeHTTP(w, req)
		return w
	}

	w := upload("other", "a.png", []byte("x"))
	assert.Equal(t, 400, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Please upload a file"}`, w.Body.String())

	w = upload("file", "notes.png", []byte("just some text, not an image"))
	assert.Equal(t, 400, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Please upload an image file"}`, w.Body.String())

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
	w = upload("file", "camp.png", png)
	require.Equal(t, 200, w.Code, w.Body.String())
	name := "photo_" + id + ".png"
	assert.JSONEq(t, `{"success":true,"data":"`+name+`"}`, w.Body.String())

	_, err := os.Stat(filepath.Join(env.Uploads, name))
	assert.NoError(t, err)

	r := env.do("GET", "/api/v1/bootcamps/"+id, "", nil)
	assert.Equal(t, name, decode[struct{ Data map[string]any }](t, r).Data["photo"])
	// image bytes behind a markup filename are still stored as an image
	w = upload("file", "camp.html", png)
	require.Equal(t, 200, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true,"data":"`+name+`"}`, w.Body.String())
	_, err = os.Stat(filepath.Join(env.Uploads, "photo_"+id+".html"))
	assert.True(t, os.IsNotExist(err), "no .html file written")
}
