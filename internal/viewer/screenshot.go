package viewer

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Screenshot writes the framebuffer's current contents to a PNG file.
func (v *Viewer) Screenshot(path string) error {
	width, height := int(v.width), int(v.height)

	var prevFBO int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prevFBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, v.fbo)

	pixels := make([]byte, width*height*4)
	gl.ReadPixels(0, 0, v.width, v.height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))

	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))

	// GL rows start at the bottom; flip while copying.
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		srcRow := (height - 1 - y) * width * 4
		dstRow := y * width * 4
		copy(img.Pix[dstRow:dstRow+width*4], pixels[srcRow:srcRow+width*4])
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}
