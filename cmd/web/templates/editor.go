package templates

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/a-h/templ"
	"github.com/spf13/cast"

	"thirdcoast.systems/cutroom/internal/editor"
	"thirdcoast.systems/cutroom/pkg/editsettings"
	"thirdcoast.systems/cutroom/pkg/filters"
)

// EditorPage is what the editor page is rendered from. Signals is the
// initial datastar signal tree as JSON; the stream keeps it current.
type EditorPage struct {
	State   editor.State
	Params  []editsettings.Param
	Groups  []filters.GroupPresets
	Signals string
}

// Editor renders the full editor document.
func Editor(p EditorPage) templ.Component {
	return Layout("cutroom", editorBody(p))
}

func editorBody(p EditorPage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<body`)
		h.attr("data-signals", p.Signals)
		h.raw(` data-init="@get('/api/editor/stream')">`)

		h.raw(`<header><h1>cutroom</h1>`)
		h.raw(`<span class="status" data-show="$editor.uploading" data-text="'Uploading ' + $editor.uploadProgress + '%'"></span>`)
		h.raw(`<span class="status" data-show="$editor.processing">Processing…</span>`)
		h.raw(`</header><main>`)

		h.render(ctx, sourcePanel())
		h.render(ctx, playerPanel())

		h.raw(`<section class="settings" id="settings"><h2>Settings</h2><div id="params">`)
		for _, param := range p.Params {
			h.render(ctx, paramControl(param, p.State.Settings))
		}
		h.raw(`</div><button data-on:click="@post('/api/editor/settings/reset')">Reset</button></section>`)

		h.raw(`<section class="filters"><h2>Filters <button class="link" data-on:click="@post('/api/editor/filters/clear')">clear</button></h2>`)
		h.raw(`<div id="filter-groups">`)
		for _, g := range p.Groups {
			h.render(ctx, filterGroup(g, p.State.Settings.Filters))
		}
		h.raw(`</div></section>`)

		h.raw(`<section class="process">`)
		h.raw(`<button class="primary" data-on:click="@post('/api/editor/process')" data-attr:disabled="$editor.processing">Process video</button>`)
		h.raw(`<a data-show="$editor.processedUrl" data-attr:href="$editor.processedUrl" download>Download result</a>`)
		h.raw(`</section></main></body>`)
		return h.err
	})
}

func sourcePanel() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<section class="source"><h2>Source</h2>`)
		h.raw(`<label><input type="file" id="upload" accept="video/*"> Upload</label>`)
		h.raw(`<form data-on:submit__prevent="@post('/api/editor/local')">`)
		h.raw(`<input type="text" placeholder="/path/on/processing/host.mp4" data-bind:filePath>`)
		h.raw(`<button type="submit">Open local file</button></form>`)
		h.raw(`<p class="muted" data-text="$editor.source.filename || $editor.source.filePath || 'No video selected'"></p>`)
		h.raw(`</section>`)
		return h.err
	})
}

func playerPanel() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<section class="player">`)
		h.raw(`<video controls data-attr:src="$editor.preview.previewUrl" data-show="$editor.preview.previewUrl"`)
		h.raw(` data-on:timeupdate__throttle.250ms="$time = el.currentTime; $scrub = true; @post('/api/editor/time')"></video>`)
		h.raw(`<div class="frame">`)
		h.raw(`<img alt="Frame preview" data-attr:src="$editor.preview.framePreviewUrl" data-show="$editor.preview.framePreviewUrl">`)
		h.raw(`<span class="loading" data-show="$editor.preview.previewLoading">Rendering…</span></div>`)
		h.raw(`<input type="range" min="0" step="0.1" data-attr:max="$editor.duration" data-effect="el.value = $editor.preview.currentVideoTime"`)
		h.raw(` data-on:input="$time = el.valueAsNumber; $scrub = false; @post('/api/editor/time')">`)
		h.raw(`<label><input type="checkbox" data-effect="el.checked = $editor.preview.livePreviewEnabled"`)
		h.raw(` data-on:change="$enabled = el.checked; @post('/api/editor/live-preview')"> Live preview</label>`)
		h.raw(`<button data-on:click="@post('/api/editor/preview')">Refresh frame</button>`)
		h.raw(`<button data-on:click="@post('/api/editor/clip-preview')" data-attr:disabled="!$editor.source.filename">Clip preview</button>`)
		h.raw(`</section>`)
		return h.err
	})
}

// paramControl renders one setting. data-effect writes every patched value
// back into the control, so resets made elsewhere show up here.
func paramControl(p editsettings.Param, s editsettings.Settings) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		signal := "$editor.settings." + p.Key
		send := fmt.Sprintf("$key = '%s'; $value = %%s; @post('/api/editor/settings')", p.Key)
		current, _ := s.Get(p.Key)

		h.raw(`<label class="param"`)
		h.attr("data-param", p.Key)
		h.raw(`>`)
		h.text(p.Label)

		switch p.Type {
		case editsettings.ParamRange:
			v := cast.ToFloat64(current)
			h.raw(`<input type="range"`)
			h.attr("min", formatFloat(p.Min))
			h.attr("max", formatFloat(p.Max))
			h.attr("step", formatFloat(p.Step))
			h.attr("value", formatFloat(v))
			h.attr("data-effect", "el.value = "+signal)
			h.attr("data-on:input", fmt.Sprintf(send, "el.valueAsNumber"))
			h.raw(`><span`)
			h.attr("data-text", fmt.Sprintf("%s.toFixed(%d)", signal, p.Decimals))
			h.raw(`>`)
			h.text(strconv.FormatFloat(v, 'f', p.Decimals, 64))
			h.raw(`</span>`)
		case editsettings.ParamSelect:
			selected := fmt.Sprint(current)
			h.raw(`<select`)
			h.attr("data-effect", "el.value = "+signal)
			h.attr("data-on:change", fmt.Sprintf(send, "el.value"))
			h.raw(`>`)
			for _, o := range p.Options {
				h.raw(`<option`)
				h.attr("value", o.Value)
				if o.Value == selected {
					h.raw(` selected`)
				}
				h.raw(`>`)
				h.text(o.Label)
				h.raw(`</option>`)
			}
			h.raw(`</select>`)
		default:
			h.raw(`<input type="checkbox"`)
			if cast.ToBool(current) {
				h.raw(` checked`)
			}
			h.attr("data-effect", "el.checked = "+signal)
			h.attr("data-on:change", fmt.Sprintf(send, "el.checked"))
			h.raw(`>`)
		}
		h.raw(`</label>`)
		return h.err
	})
}

func filterGroup(g filters.GroupPresets, active []string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="group"><h3>`)
		h.text(g.Group.Name)
		if g.Group.Exclusive {
			h.text(" (pick one)")
		}
		h.raw(`</h3>`)
		for _, f := range g.Presets {
			h.raw(`<button`)
			if slices.Contains(active, f.ID) {
				h.raw(` class="active"`)
			}
			h.attr("data-filter", f.ID)
			h.attr("title", f.Description)
			h.attr("data-class:active", fmt.Sprintf("$editor.settings.filters.includes('%s')", f.ID))
			h.attr("data-on:click", fmt.Sprintf("@post('/api/editor/filters/%s/toggle')", f.ID))
			h.raw(`>`)
			h.text(f.Name)
			h.raw(`</button>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
