package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jmylchreest/pixelpad/internal/user"
)

// maxJSONBody caps account request bodies.
const maxJSONBody = 1 << 20

// decodeObject reads a JSON object from the request body. Malformed or
// non-object bodies decode to an empty object.
func decodeObject(r *http.Request) map[string]any {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	dec.UseNumber()

	var body map[string]any
	if err := dec.Decode(&body); err != nil || body == nil {
		return map[string]any{}
	}
	return body
}

// scalarString renders a JSON scalar as a string. Objects and arrays are not scalars.
func scalarString(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

func credentials(body map[string]any) (phone, password string) {
	phone, _ = scalarString(body["phone"])
	password, _ = scalarString(body["password"])
	return strings.TrimSpace(phone), strings.TrimSpace(password)
}

func (s *Server) writeUserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, user.ErrMissingCredentials.Error())
	case errors.Is(err, user.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, user.ErrInvalidCredentials.Error())
	case errors.Is(err, user.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		s.logger.Error("user store failure", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	phone, password := credentials(decodeObject(r))
	u, err := s.users.Authenticate(r.Context(), phone, password)
	if err != nil {
		s.writeUserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	phone, password := credentials(decodeObject(r))
	u, err := s.users.Register(r.Context(), phone, password)
	if err != nil {
		s.writeUserError(w, err)
		return
	}
	s.logger.Info("registered user", "user", u.ID)
	writeJSON(w, http.StatusCreated, u)
}

// userID parses the {userID} path parameter.
func userID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "userID"))
	return id, err == nil
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	u, err := s.users.Get(r.Context(), id)
	if err != nil {
		s.writeUserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// profileUpdate maps a JSON body onto a user.Update. Null and non-scalar
// values leave the field unchanged.
func profileUpdate(body map[string]any) user.Update {
	var up user.Update
	fields := map[string]**string{
		"phone":      &up.Phone,
		"username":   &up.Username,
		"password":   &up.Password,
		"email":      &up.Email,
		"birthday":   &up.Birthday,
		"mbti":       &up.MBTI,
		"avatarMode": &up.AvatarMode,
	}
	for key, dst := range fields {
		if v, ok := scalarString(body[key]); ok {
			*dst = &v
		}
	}
	return up
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	u, err := s.users.Update(r.Context(), id, profileUpdate(decodeObject(r)))
	if err != nil {
		s.writeUserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
