package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/jmcaldera/quizwire/internal/models"
)

// HealthResponse reports server liveness and session counters.
type HealthResponse struct {
	Status    string       `json:"status"`
	Phase     models.Phase `json:"phase"`
	Players   int          `json:"players"`
	Questions int          `json:"questions"`
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	phase, players, questions := h.Game.Stats()
	respondOK(w, HealthResponse{
		Status:    "ok",
		Phase:     phase,
		Players:   players,
		Questions: questions,
	})
}

func (h *Handlers) handleGetQuestions(w http.ResponseWriter, r *http.Request) {
	questions := h.Game.Questions()
	if questions == nil {
		questions = []models.Question{}
	}
	respondOK(w, questions)
}

// handleCreateQuestion accepts either a JSON body or a multipart form with an
// optional image. The multipart path exists for the admin console's upload
// form.
func (h *Handlers) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	contentType := r.Header.Get("Content-Type")

	var (
		req      models.AddQuestionRequest
		imageURL string
	)

	if strings.HasPrefix(contentType, "application/json") {
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, err)
			return
		}
	} else {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			respondError(w, BadRequest("Invalid multipart form"))
			return
		}

		correctIndex, err := strconv.Atoi(r.FormValue("correctAnswer"))
		if err != nil {
			respondError(w, BadRequest("Invalid correctAnswer value"))
			return
		}

		req = models.AddQuestionRequest{
			Text:         r.FormValue("question"),
			Options:      r.PostForm["options"],
			CorrectIndex: correctIndex,
			Category:     r.FormValue("category"),
		}

		file, header, err := r.FormFile("image")
		if err == nil {
			defer file.Close()
			imageURL, err = h.saveImage(file, header.Filename)
			if err != nil {
				respondError(w, err)
				return
			}
		}
	}

	question, err := h.Game.AddQuestion("", req, imageURL)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, question)
}

var allowedImageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// saveImage stores an uploaded image under the uploads dir and returns its
// public URL path.
func (h *Handlers) saveImage(file multipart.File, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExts[ext] {
		return "", BadRequest("Unsupported image type " + ext)
	}

	if err := os.MkdirAll(h.UploadsDir, 0o755); err != nil {
		return "", InternalError(err)
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(h.UploadsDir, name))
	if err != nil {
		return "", InternalError(err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", InternalError(err)
	}
	return "/img/" + name, nil
}

// handleJoinQR serves a QR code pointing players at the join URL.
func (h *Handlers) handleJoinQR(w http.ResponseWriter, r *http.Request) {
	png, err := qrcode.Encode(h.JoinURL, qrcode.Medium, 256)
	if err != nil {
		respondError(w, InternalError(err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}

func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	respondOK(w, map[string]string{
		"service":   "quizwire",
		"websocket": "/ws",
		"health":    "/health",
		"questions": "/api/questions",
		"joinQR":    "/join/qr",
	})
}
