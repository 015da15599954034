package handlers

import "net/http"

// Index serves the self-contained upload page. The page posts directly to
// /api/generate-videos and renders the per-file results with download links.
func (a *App) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(indexHTML))
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Clip Forge</title>
<style>
body { font-family: Arial, sans-serif; max-width: 800px; margin: 0 auto; padding: 20px; }
.upload-area { border: 2px dashed #ccc; padding: 40px; text-align: center; margin: 20px 0; cursor: pointer; }
.file-item { display: flex; align-items: center; gap: 10px; margin: 10px 0; }
.file-item input[type=text] { flex: 1; padding: 6px; }
.result { margin: 10px 0; padding: 10px; border-radius: 5px; }
.success { background: #d4edda; border: 1px solid #c3e6cb; }
.error { background: #f8d7da; border: 1px solid #f5c6cb; }
button { background: #007bff; color: white; border: none; padding: 10px 20px; border-radius: 5px; cursor: pointer; }
button:disabled { background: #ccc; cursor: not-allowed; }
</style>
</head>
<body>
<h1>Clip Forge</h1>
<p>Upload images to generate short video clips, with optional per-image prompts and sound effects.</p>

<form id="uploadForm" enctype="multipart/form-data">
  <div class="upload-area" id="uploadArea">
    <p>Drag &amp; drop images here or click to browse</p>
    <input type="file" id="fileInput" name="files" multiple accept="image/*" style="display: none;">
  </div>
  <div id="fileList"></div>
  <div style="margin: 20px 0;">
    <label><input type="checkbox" id="addSound" checked> Add sound effects to videos</label>
  </div>
  <button type="submit" id="submitBtn">Generate Videos</button>
</form>

<div id="status"></div>
<div id="results"></div>

<script>
const uploadArea = document.getElementById('uploadArea');
const fileInput = document.getElementById('fileInput');
const fileList = document.getElementById('fileList');
const uploadForm = document.getElementById('uploadForm');
const submitBtn = document.getElementById('submitBtn');
const statusEl = document.getElementById('status');
const results = document.getElementById('results');
let selected = [];

uploadArea.addEventListener('click', () => fileInput.click());
uploadArea.addEventListener('dragover', (e) => e.preventDefault());
uploadArea.addEventListener('drop', (e) => {
  e.preventDefault();
  addFiles(e.dataTransfer.files);
});
fileInput.addEventListener('change', () => addFiles(fileInput.files));

function addFiles(list) {
  for (const f of list) selected.push(f);
  renderFiles();
}

function renderFiles() {
  fileList.innerHTML = '';
  selected.forEach((f, i) => {
    const row = document.createElement('div');
    row.className = 'file-item';
    row.innerHTML = '<span>' + f.name + '</span>' +
      '<input type="text" placeholder="Optional prompt" data-index="' + i + '">';
    fileList.appendChild(row);
  });
}

uploadForm.addEventListener('submit', async (e) => {
  e.preventDefault();
  if (selected.length === 0) { statusEl.textContent = 'Select at least one image.'; return; }
  const form = new FormData();
  for (const f of selected) form.append('files', f);
  for (const input of fileList.querySelectorAll('input[type=text]')) {
    form.append('prompts', input.value.trim());
  }
  form.append('add_sound', document.getElementById('addSound').checked.toString());

  submitBtn.disabled = true;
  statusEl.textContent = 'Generating, this can take several minutes...';
  results.innerHTML = '';
  try {
    const resp = await fetch('/api/generate-videos', { method: 'POST', body: form });
    const data = await resp.json();
    if (!resp.ok) {
      statusEl.textContent = data.message || data.error || 'Request failed.';
      return;
    }
    statusEl.textContent = data.successful_videos + ' of ' + data.total_videos + ' videos generated.';
    for (const r of data.video_results) {
      const div = document.createElement('div');
      div.className = 'result ' + (r.success ? 'success' : 'error');
      div.innerHTML = r.success
        ? r.image_filename + ' → <a href="/api/download/' + r.video_filename + '">' + r.video_filename + '</a>'
        : r.image_filename + ': ' + r.error;
      results.appendChild(div);
    }
    if (data.sound_results) {
      for (const r of data.sound_results) {
        if (!r.success) continue;
        for (const p of r.sound_video_paths) {
          const name = p.split('/').pop();
          const div = document.createElement('div');
          div.className = 'result success';
          div.innerHTML = 'sound: <a href="/api/download/' + name + '">' + name + '</a>';
          results.appendChild(div);
        }
      }
    }
    const all = document.createElement('div');
    all.className = 'result';
    all.innerHTML = '<a href="/api/download-all">Download everything as zip</a>';
    results.appendChild(all);
  } catch (err) {
    statusEl.textContent = 'Request failed: ' + err;
  } finally {
    submitBtn.disabled = false;
  }
});
</script>
</body>
</html>
`
