package bramble

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
)

// TextureRegion describes a sub-image within an atlas page.
type TextureRegion struct {
	Page      int     // index into the atlas page list
	X, Y      float64 // top-left corner of the packed frame on the page
	Width     float64 // width of the packed frame
	Height    float64 // height of the packed frame
	OriginalW float64 // untrimmed source width
	OriginalH float64 // untrimmed source height
	OffsetX   float64 // trim offset from the left of the source rect
	OffsetY   float64 // trim offset from the top of the source rect
	Rotated   bool    // true if the frame is stored rotated 90 degrees clockwise
}

// Atlas holds the named regions of a TexturePacker atlas. Pages are
// referenced by image file name; the host loads them and supplies texture
// handles to Register.
type Atlas struct {
	Pages   []string
	regions map[string]TextureRegion
	handles map[string]ImageHandle
}

// Region returns the region with the given name.
func (a *Atlas) Region(name string) (TextureRegion, bool) {
	r, ok := a.regions[name]
	return r, ok
}

// Names returns all region names in sorted order.
func (a *Atlas) Names() []string {
	names := make([]string, 0, len(a.regions))
	for n := range a.regions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of regions.
func (a *Atlas) Len() int {
	return len(a.regions)
}

// Register adds every region to store as an image whose texture is the
// page's handle and whose source rect is the packed frame. pages[i] is the
// texture for Pages[i]. Regions on pages without a handle are skipped.
func (a *Atlas) Register(store *AssetStore, pages []ImageHandle) {
	if a.handles == nil {
		a.handles = make(map[string]ImageHandle, len(a.regions))
	}
	for _, name := range a.Names() {
		r := a.regions[name]
		if r.Page < 0 || r.Page >= len(pages) {
			log.Printf("bramble: atlas region %q references page %d with no texture", name, r.Page)
			continue
		}
		w, h := r.OriginalW, r.OriginalH
		if w == 0 || h == 0 {
			w, h = r.Width, r.Height
		}
		info := ImageInfo{
			Width:   w,
			Height:  h,
			Texture: pages[r.Page],
			Src:     Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height},
		}
		if h, ok := a.handles[name]; ok {
			store.SetImage(h, info)
			continue
		}
		a.handles[name] = store.AddImageInfo(info)
	}
}

// Image returns the handle Register assigned to the named region. Unknown
// names log a warning and return the zero handle, which never resolves, so
// widgets drawing it are skipped.
func (a *Atlas) Image(name string) ImageHandle {
	if h, ok := a.handles[name]; ok {
		return h
	}
	log.Printf("bramble: atlas region %q not found", name)
	return 0
}

// --- TexturePacker JSON ---

type jsonRect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type jsonSize struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type jsonFrame struct {
	Filename         string   `json:"filename"`
	Frame            jsonRect `json:"frame"`
	Rotated          bool     `json:"rotated"`
	Trimmed          bool     `json:"trimmed"`
	SpriteSourceSize jsonRect `json:"spriteSourceSize"`
	SourceSize       jsonSize `json:"sourceSize"`
}

type jsonMeta struct {
	Image string `json:"image"`
}

type jsonTexturePage struct {
	Image  string          `json:"image"`
	Frames json.RawMessage `json:"frames"`
}

// LoadAtlas parses TexturePacker JSON. It accepts the single-page hash
// format ({"frames": {...}}), the single-page array format
// ({"frames": [...]}) and the multi-page format ({"textures": [...]}).
func LoadAtlas(data []byte) (*Atlas, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("bramble: failed to parse atlas JSON: %w", err)
	}

	a := &Atlas{regions: make(map[string]TextureRegion)}

	if raw, ok := top["textures"]; ok {
		var pages []jsonTexturePage
		if err := json.Unmarshal(raw, &pages); err != nil {
			return nil, fmt.Errorf("bramble: failed to parse atlas textures: %w", err)
		}
		for i, page := range pages {
			a.Pages = append(a.Pages, page.Image)
			if err := a.parseFrames(page.Frames, i); err != nil {
				return nil, err
			}
		}
		return a, nil
	}

	raw, ok := top["frames"]
	if !ok {
		return nil, fmt.Errorf("bramble: atlas JSON has neither \"frames\" nor \"textures\" key")
	}
	var meta jsonMeta
	if m, ok := top["meta"]; ok {
		if err := json.Unmarshal(m, &meta); err != nil {
			return nil, fmt.Errorf("bramble: failed to parse atlas meta: %w", err)
		}
	}
	a.Pages = []string{meta.Image}
	if err := a.parseFrames(raw, 0); err != nil {
		return nil, err
	}
	return a, nil
}

// parseFrames handles both the hash form (name -> frame) and the array form
// (frames carrying a filename).
func (a *Atlas) parseFrames(raw json.RawMessage, page int) error {
	if len(raw) == 0 {
		return nil
	}
	if raw[0] == '[' {
		var frames []jsonFrame
		if err := json.Unmarshal(raw, &frames); err != nil {
			return fmt.Errorf("bramble: failed to parse atlas frames: %w", err)
		}
		for _, f := range frames {
			a.regions[f.Filename] = frameToRegion(f, page)
		}
		return nil
	}
	var frames map[string]jsonFrame
	if err := json.Unmarshal(raw, &frames); err != nil {
		return fmt.Errorf("bramble: failed to parse atlas frames: %w", err)
	}
	for name, f := range frames {
		a.regions[name] = frameToRegion(f, page)
	}
	return nil
}

func frameToRegion(f jsonFrame, page int) TextureRegion {
	return TextureRegion{
		Page:      page,
		X:         f.Frame.X,
		Y:         f.Frame.Y,
		Width:     f.Frame.W,
		Height:    f.Frame.H,
		OriginalW: f.SourceSize.W,
		OriginalH: f.SourceSize.H,
		OffsetX:   f.SpriteSourceSize.X,
		OffsetY:   f.SpriteSourceSize.Y,
		Rotated:   f.Rotated,
	}
}
