// Noise channel preview tool - interactive visualization with sliders.
//
// Usage: go run ./cmd/noisepreview
package main

import (
	"fmt"
	"image/color"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/ojrac/opensimplex-go"

	"github.com/Nandanrmenon/flux/config"
	"github.com/Nandanrmenon/flux/noise"
	"github.com/Nandanrmenon/flux/render"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30
	gridSize     = 256
)

func defaultChannel() config.NoiseChannel {
	return config.NoiseChannel{
		Name:            "preview",
		Frequency:       4.2,
		Amplitude:       1.0,
		Offset:          0,
		OffsetIncrement: 0.05,
		Multiplier:      0.12,
	}
}

func main() {
	rl.InitWindow(windowWidth, windowHeight, "Noise Channel Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	ch := defaultChannel()
	var seed int64 = 42
	gen := opensimplex.New(seed)

	// Create texture for rendering
	pixels := make([]color.RGBA, gridSize*gridSize)
	img := rl.GenImageColor(gridSize, gridSize, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	// Time for animation
	var elapsed float32
	animating := true

	fillPreview(pixels, gen, ch, elapsed)
	rl.UpdateTexture(texture, pixels)

	// GUI state
	needsRegen := false

	for !rl.WindowShouldClose() {
		// Animation
		if animating {
			elapsed += rl.GetFrameTime()
			needsRegen = true
		}

		// Regenerate if needed
		if needsRegen {
			fillPreview(pixels, gen, ch, elapsed)
			rl.UpdateTexture(texture, pixels)
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Draw preview
		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: float32(gridSize), Height: float32(gridSize)},
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		// Draw stats
		statsY := int32(previewSize + 25)
		rl.DrawText("Red = x force, green = y force, gray = zero", 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Time: %.1f", elapsed), 15, statsY+20, 16, rl.DarkGray)

		// Control panel
		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Noise Channel Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		// Frequency slider
		rl.DrawText("Frequency (spatial detail)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newFrequency := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0.5", "20.0",
			float32(ch.Frequency), 0.5, 20.0,
		)
		rl.DrawText(fmt.Sprintf("%.1f", ch.Frequency), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if float64(newFrequency) != ch.Frequency {
			ch.Frequency = float64(newFrequency)
			needsRegen = true
		}
		panelY += 35

		// Amplitude slider
		rl.DrawText("Amplitude (force strength)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newAmplitude := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "2.0",
			float32(ch.Amplitude), 0, 2.0,
		)
		rl.DrawText(fmt.Sprintf("%.2f", ch.Amplitude), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if float64(newAmplitude) != ch.Amplitude {
			ch.Amplitude = float64(newAmplitude)
			needsRegen = true
		}
		panelY += 35

		// Offset slider
		rl.DrawText("Offset (phase)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newOffset := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "300",
			float32(ch.Offset), 0, 300,
		)
		rl.DrawText(fmt.Sprintf("%.0f", ch.Offset), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if float64(newOffset) != ch.Offset {
			ch.Offset = float64(newOffset)
			needsRegen = true
		}
		panelY += 35

		// Offset increment slider
		rl.DrawText("Offset increment (evolution speed)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newIncrement := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "0.2",
			float32(ch.OffsetIncrement), 0, 0.2,
		)
		rl.DrawText(fmt.Sprintf("%.3f", ch.OffsetIncrement), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if float64(newIncrement) != ch.OffsetIncrement {
			ch.OffsetIncrement = float64(newIncrement)
			needsRegen = true
		}
		panelY += 35

		// Multiplier slider
		rl.DrawText("Multiplier (blend weight)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newMultiplier := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "0.5",
			float32(ch.Multiplier), 0, 0.5,
		)
		rl.DrawText(fmt.Sprintf("%.3f", ch.Multiplier), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if float64(newMultiplier) != ch.Multiplier {
			ch.Multiplier = float64(newMultiplier)
		}
		panelY += 35

		// Seed slider
		rl.DrawText("Seed", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newSeed := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "99999",
			float32(seed), 0, 99999,
		)
		rl.DrawText(fmt.Sprintf("%d", seed), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int64(newSeed) != seed {
			seed = int64(newSeed)
			gen = opensimplex.New(seed)
			needsRegen = true
		}
		panelY += 45

		// Buttons
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(animating, "Stop", "Animate")) {
			animating = !animating
		}

		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset Time") {
			elapsed = 0
			needsRegen = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			seed = int64(rl.GetRandomValue(0, 99999))
			gen = opensimplex.New(seed)
			needsRegen = true
		}

		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			ch = defaultChannel()
			seed = 42
			gen = opensimplex.New(seed)
			elapsed = 0
			needsRegen = true
		}
		panelY += 55

		// Output YAML
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		for _, line := range yamlLines(ch) {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
		}

		// Instructions
		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)

		// Copy to clipboard on C key
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(yamlSnippet(ch))
		}

		rl.EndDrawing()
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

func yamlLines(ch config.NoiseChannel) []string {
	return []string{
		"- name: " + ch.Name,
		fmt.Sprintf("  frequency: %.1f", ch.Frequency),
		fmt.Sprintf("  amplitude: %.2f", ch.Amplitude),
		fmt.Sprintf("  offset: %.0f", ch.Offset),
		fmt.Sprintf("  offset_increment: %.3f", ch.OffsetIncrement),
		fmt.Sprintf("  multiplier: %.3f", ch.Multiplier),
	}
}

func yamlSnippet(ch config.NoiseChannel) string {
	out := ""
	for _, line := range yamlLines(ch) {
		out += line + "\n"
	}
	return out
}

// fillPreview renders the channel exactly as the simulation encodes it:
// x force in red, y force in green, zero at mid-gray.
func fillPreview(pixels []color.RGBA, gen opensimplex.Noise, ch config.NoiseChannel, elapsed float32) {
	for y := 0; y < gridSize; y++ {
		v := (float64(y) + 0.5) / gridSize
		for x := 0; x < gridSize; x++ {
			u := (float64(x) + 0.5) / gridSize
			fx, fy := noise.Sample(gen, ch, u, v, elapsed)
			pixels[y*gridSize+x] = color.RGBA{
				R: render.EncodeSigned(fx, 1.0),
				G: render.EncodeSigned(fy, 1.0),
				B: 128,
				A: 255,
			}
		}
	}
}
