package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"campuserp/internal/apperr"
	"campuserp/internal/auth"
)

type fakeStore struct {
	deans    map[string]*Credentials
	faculty  map[string]*Credentials
	students map[string]*Credentials
	itAdmins map[string]*Credentials
}

func (f *fakeStore) DeanByUserID(_ context.Context, userID string) (*Credentials, error) {
	return f.deans[userID], nil
}

func (f *fakeStore) FacultyByUserID(_ context.Context, userID string) (*Credentials, error) {
	return f.faculty[userID], nil
}

func (f *fakeStore) StudentByEmail(_ context.Context, email string) (*Credentials, error) {
	return f.students[email], nil
}

func (f *fakeStore) ITAdminByUsername(_ context.Context, username string) (*Credentials, error) {
	return f.itAdmins[username], nil
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func issueStub(subject, role, name string) (auth.TokenPair, error) {
	return auth.TokenPair{AccessToken: "access-" + role, RefreshToken: "refresh-" + role}, nil
}

func TestLoginFaculty(t *testing.T) {
	st := &fakeStore{faculty: map[string]*Credentials{
		"FAC01": {ID: 4, UserID: "FAC01", Name: "Prof. Iyer", Email: "iyer@example.edu", DepartmentID: 2, PasswordHash: hashOf(t, "secret")},
	}}
	svc := NewService(st, issueStub, "")

	id, pair, err := svc.LoginFaculty(context.Background(), "FAC01", "secret")
	require.NoError(t, err)
	assert.Equal(t, RoleFaculty, id.Role)
	assert.Equal(t, 4, id.ID)
	assert.Equal(t, 2, id.DepartmentID)
	assert.Equal(t, "access-faculty", pair.AccessToken)
}

func TestLoginWrongPassword(t *testing.T) {
	st := &fakeStore{faculty: map[string]*Credentials{
		"FAC01": {ID: 4, UserID: "FAC01", PasswordHash: hashOf(t, "secret")},
	}}
	svc := NewService(st, issueStub, "")

	_, _, err := svc.LoginFaculty(context.Background(), "FAC01", "nope")
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}

func TestLoginUnknownPrincipal(t *testing.T) {
	svc := NewService(&fakeStore{deans: map[string]*Credentials{}}, issueStub, "")

	_, _, err := svc.LoginDean(context.Background(), "nobody", "secret")
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}

func TestLoginStudentDomainRestriction(t *testing.T) {
	st := &fakeStore{students: map[string]*Credentials{
		"a@ced.alliance.edu.in": {ID: 9, Email: "a@ced.alliance.edu.in", SectionID: 3, PasswordHash: hashOf(t, "secret")},
	}}
	svc := NewService(st, issueStub, "@ced.alliance.edu.in")

	_, _, err := svc.LoginStudent(context.Background(), "a@gmail.com", "secret")
	require.Error(t, err)
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
	assert.Equal(t, "Only institutional emails are allowed", apperr.MessageOf(err))

	id, _, err := svc.LoginStudent(context.Background(), "a@ced.alliance.edu.in", "secret")
	require.NoError(t, err)
	assert.Equal(t, RoleStudent, id.Role)
	assert.Equal(t, 3, id.SectionID)
}

func TestLoginStudentUnknownEmail(t *testing.T) {
	svc := NewService(&fakeStore{students: map[string]*Credentials{}}, issueStub, "")

	_, _, err := svc.LoginStudent(context.Background(), "ghost@ced.alliance.edu.in", "secret")
	assert.Equal(t, "No student found with this email", apperr.MessageOf(err))
}

func TestLoginMissingFields(t *testing.T) {
	svc := NewService(&fakeStore{}, issueStub, "")

	_, _, err := svc.LoginIT(context.Background(), "", "x")
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
	_, _, err = svc.LoginDean(context.Background(), "dean", "")
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
}
