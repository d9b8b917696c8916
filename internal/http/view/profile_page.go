package view

import (
	"bytes"
	"html/template"
	"net/url"

	"github.com/sifan077/BioLink/internal/app/model"
)

const (
	trackViewURL  = "/api/analytics/track"
	trackClickURL = "/api/analytics/link-click"
)

// ProfilePageData provides the dynamic fields required by the profile template.
// Links are rendered as given; callers pass only the active ones.
type ProfilePageData struct {
	Profile *model.Profile
	Links   []model.SocialLink
	Videos  []model.Video
}

type profilePageModel struct {
	Title            string
	Profile          model.Profile
	Links            []model.SocialLink
	Videos           []model.Video
	KickStatusURL    string
	YouTubeStatusURL string
	TrackViewURL     string
	TrackClickURL    string
}

var profilePageTmpl = template.Must(template.New("profile_page").Parse(`
<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8" />
	<meta name="viewport" content="width=device-width, initial-scale=1" />
	<title>{{.Title}}</title>
	<style>
		:root {
			--bg: #090a0f;
			--card: rgba(255, 255, 255, 0.05);
			--border: rgba(255, 255, 255, 0.15);
			--text: #e7ecff;
			--muted: #a1acc5;
			--accent: #7dd3fc;
			--accent-strong: #38bdf8;
			--live: #ef4444;
			font-family: "Inter", -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
		}
		* { box-sizing: border-box; }
		body {
			margin: 0;
			min-height: 100vh;
			display: flex;
			justify-content: center;
			padding: 48px 0;
			background: radial-gradient(circle at 20% 20%, #111827, #030712 60%);
			color: var(--text);
		}
		.card {
			background: var(--card);
			border: 1px solid var(--border);
			border-radius: 18px;
			padding: 32px;
			width: min(520px, 92vw);
			box-shadow: 0 45px 100px rgba(0,0,0,0.35);
			backdrop-filter: blur(18px);
			text-align: center;
		}
		.avatar {
			width: 96px;
			height: 96px;
			border-radius: 50%;
			object-fit: cover;
			border: 2px solid var(--border);
		}
		h1 { font-size: 1.5rem; margin-bottom: 6px; }
		p { color: var(--muted); margin-top: 0; }
		.live-badge {
			display: inline-block;
			margin: 0 4px 12px;
			padding: 2px 10px;
			border-radius: 999px;
			background: var(--live);
			font-size: 0.8rem;
			font-weight: 600;
			color: #fff;
			text-decoration: none;
		}
		.links { display: flex; flex-direction: column; gap: 12px; margin: 24px 0; }
		a.button {
			display: flex;
			align-items: center;
			justify-content: center;
			height: 48px;
			border-radius: 999px;
			background: linear-gradient(120deg, var(--accent), var(--accent-strong));
			color: #050708;
			font-weight: 600;
			text-decoration: none;
			transition: transform 0.15s ease, opacity 0.15s ease;
		}
		a.button:hover { transform: translateY(-1px); opacity: 0.92; }
		.videos { display: grid; gap: 12px; text-align: left; }
		.video { color: var(--text); text-decoration: none; display: flex; gap: 12px; align-items: center; }
		.video img { width: 120px; border-radius: 8px; }
		.video small { color: var(--muted); display: block; }
	</style>
</head>
<body>
	<div class="card">
		{{with .Profile.AvatarURL}}<img class="avatar" src="{{.}}" alt="" />{{end}}
		<h1>{{.Profile.Name}}</h1>
		{{with .Profile.Bio}}<p>{{.}}</p>{{end}}

		{{with .KickStatusURL}}<a class="live-badge" data-live-url="{{.}}" hidden>LIVE on Kick</a>{{end}}
		{{with .YouTubeStatusURL}}<a class="live-badge" data-live-url="{{.}}" hidden>LIVE on YouTube</a>{{end}}

		<div class="links">
			{{range .Links}}
			<a class="button" href="{{.URL}}" target="_blank" rel="noopener"
				data-link-id="{{.ID}}" data-link-name="{{.Name}}"
				{{with .Color}}style="background: {{.}}"{{end}}>{{.Name}}</a>
			{{end}}
		</div>

		{{if .Videos}}
		<div class="videos">
			{{range .Videos}}
			<a class="video" href="{{or .URL (printf "https://www.youtube.com/watch?v=%s" .ID)}}" target="_blank" rel="noopener">
				{{with .Thumbnail}}<img src="{{.}}" alt="" />{{end}}
				<span>{{.Title}}{{with .Date}}<small>{{.}}</small>{{end}}</span>
			</a>
			{{end}}
		</div>
		{{end}}
	</div>

	<script>
		(function() {
			const viewURL = {{.TrackViewURL}};
			const clickURL = {{.TrackClickURL}};
			const post = (url, body) => {
				const payload = JSON.stringify(body || {});
				if (navigator.sendBeacon) {
					navigator.sendBeacon(url, new Blob([payload], { type: "application/json" }));
					return;
				}
				fetch(url, { method: "POST", headers: { "Content-Type": "application/json" }, body: payload, keepalive: true })
					.catch(() => {});
			};

			post(viewURL);

			document.querySelectorAll("[data-link-id]").forEach((el) => {
				el.addEventListener("click", () => {
					post(clickURL, {
						linkId: Number(el.dataset.linkId),
						linkName: el.dataset.linkName,
					});
				});
			});

			document.querySelectorAll("[data-live-url]").forEach((el) => {
				fetch(el.dataset.liveUrl)
					.then((res) => (res.ok ? res.json() : null))
					.then((status) => {
						if (!status || !status.isLive) {
							return;
						}
						if (status.videoId) {
							el.href = "https://www.youtube.com/watch?v=" + status.videoId;
						}
						el.hidden = false;
					})
					.catch(() => {});
			});
		})();
	</script>
</body>
</html>
`))

// RenderProfilePage expands the public page template.
func RenderProfilePage(data ProfilePageData) (string, error) {
	m := profilePageModel{
		Links:         data.Links,
		Videos:        data.Videos,
		TrackViewURL:  trackViewURL,
		TrackClickURL: trackClickURL,
	}
	if data.Profile != nil {
		m.Profile = *data.Profile
	}
	m.Title = m.Profile.Name
	if m.Title == "" {
		m.Title = "Links"
	}
	if m.Profile.KickUsername != "" {
		m.KickStatusURL = "/api/kick/live?" + url.Values{"username": {m.Profile.KickUsername}}.Encode()
	}
	if m.Profile.YouTubeChannelID != "" {
		m.YouTubeStatusURL = "/api/youtube/live-status?" + url.Values{"channelId": {m.Profile.YouTubeChannelID}}.Encode()
	}

	var buf bytes.Buffer
	if err := profilePageTmpl.Execute(&buf, m); err != nil {
		return "", err
	}
	return buf.String(), nil
}
