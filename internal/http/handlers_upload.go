package http

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
)

// maxUploadSize caps a single uploaded file at 10 MB.
const maxUploadSize = 10 << 20

// allowedMIME maps accepted content types to their stored extension.
var allowedMIME = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"video/mp4":  ".mp4",
	"audio/mpeg": ".mp3",
}

// Upload stores one media file under the public uploads directory and returns
// its fully qualified URL. The type check sniffs the file's leading bytes
// rather than trusting the declared Content-Type alone.
func (e *Env) Upload(c *gin.Context) {
	file, err := c.FormFile("media")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	if file.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File exceeds the 10MB limit"})
		return
	}

	src, err := file.Open()
	if err != nil {
		log.Printf("Error opening upload: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := src.Read(head)
	if err != nil && err != io.EOF {
		log.Printf("Error reading upload: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	contentType := http.DetectContentType(head[:n])
	ext, ok := allowedMIME[contentType]
	if !ok {
		// Sniffing cannot identify every container; fall back to the
		// declared type before rejecting.
		ext, ok = allowedMIME[file.Header.Get("Content-Type")]
	}
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file type"})
		return
	}

	if err := os.MkdirAll(e.Cfg.UploadDir, 0o755); err != nil {
		log.Printf("Error creating upload dir: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	name := fmt.Sprintf("%d%s", time.Now().UnixMilli(), ext)
	if err := c.SaveUploadedFile(file, filepath.Join(e.Cfg.UploadDir, name)); err != nil {
		log.Printf("Error saving upload: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": e.Cfg.BaseURL + "/uploads/" + name})
}
