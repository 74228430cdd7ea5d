package api

import (
	"net/http"
)

const operatorUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Frostwalk - Operator UI</title>
    <style>
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            font-family: monospace;
            background: #10141f;
            color: #eee;
            height: 100vh;
            display: flex;
            flex-direction: column;
        }
        header {
            background: #161d2e;
            padding: 12px 20px;
            border-bottom: 1px solid #0f3460;
            display: flex;
            justify-content: space-between;
            align-items: center;
        }
        header h1 { font-size: 16px; font-weight: normal; }
        #status {
            padding: 4px 10px;
            border-radius: 4px;
            font-size: 12px;
        }
        #status.connected { background: #1b4332; color: #95d5b2; }
        #status.disconnected { background: #7f1d1d; color: #fca5a5; }
        #status.connecting { background: #78350f; color: #fcd34d; }
        #scene {
            padding: 4px 10px;
            border-radius: 4px;
            font-size: 12px;
            background: #0f3460;
            color: #93c5fd;
        }
        .controls {
            background: #161d2e;
            padding: 10px 20px;
            border-bottom: 1px solid #0f3460;
            display: flex;
            gap: 10px;
            align-items: center;
            flex-wrap: wrap;
        }
        .controls button {
            background: #2563eb;
            border: none;
            border-radius: 4px;
            padding: 6px 12px;
            color: #fff;
            font-family: monospace;
            font-size: 12px;
            cursor: pointer;
        }
        .controls button:hover { background: #1d4ed8; }
        .controls button.danger { background: #dc2626; }
        .controls button.danger:hover { background: #b91c1c; }
        .controls input {
            background: #10141f;
            border: 1px solid #0f3460;
            border-radius: 4px;
            padding: 6px 10px;
            color: #eee;
            font-family: monospace;
            font-size: 12px;
            width: 180px;
        }
        #result {
            font-size: 12px;
            padding: 4px 10px;
            border-radius: 4px;
            display: none;
        }
        #result.success { display: inline; background: #1b4332; color: #95d5b2; }
        #result.error { display: inline; background: #7f1d1d; color: #fca5a5; }
        main { flex: 1; overflow: hidden; display: flex; flex-direction: column; }
        #events { flex: 1; overflow-y: auto; padding: 10px; }
        .event {
            padding: 8px 12px;
            margin-bottom: 4px;
            background: #161d2e;
            border-radius: 4px;
            border-left: 3px solid #0f3460;
            font-size: 13px;
            display: flex;
            gap: 12px;
            align-items: baseline;
        }
        .event.level-error { border-left-color: #dc2626; background: #1f1515; }
        .event.level-warn { border-left-color: #d97706; }
        .event.scope-scene { border-left-color: #059669; }
        .event.scope-press { border-left-color: #7c3aed; }
        .event.scope-reveal { border-left-color: #d97706; }
        .event.scope-generation { border-left-color: #db2777; }
        .event.scope-playback { border-left-color: #0891b2; }
        .ts { color: #6b7280; font-size: 11px; min-width: 90px; }
        .name { color: #60a5fa; font-weight: bold; min-width: 160px; }
        .msg { color: #9ca3af; }
        footer {
            background: #161d2e;
            padding: 8px 20px;
            border-top: 1px solid #0f3460;
            font-size: 11px;
            color: #6b7280;
        }
    </style>
</head>
<body>
    <header>
        <h1>Frostwalk - Event Stream</h1>
        <span id="scene">scene ?</span>
        <span id="status" class="disconnected">Disconnected</span>
    </header>
    <div class="controls">
        <button onclick="trigger('begin')">Begin</button>
        <button onclick="trigger('explore')">Explore</button>
        <button onclick="trigger('return')">Return</button>
        <button onclick="trigger('continue')">Continue</button>
        <button onclick="trigger('converse')">Converse</button>
        <button id="holdBtn"
            onmousedown="post('/session/press/start')"
            onmouseup="post('/session/press/end')">Hold</button>
        <button onclick="post('/session/artifacts/advance')">Next Artifact</button>
        <input type="text" id="replyText" placeholder="ask Frost...">
        <button onclick="reply()">Send</button>
        <button class="danger" onclick="post('/operator/reset')">Reset</button>
        <span id="result"></span>
    </div>
    <main>
        <div id="events"></div>
    </main>
    <footer>
        <span id="count">0</span> events | WebSocket: /ws/events
    </footer>

    <script>
        const eventsDiv = document.getElementById('events');
        const statusEl = document.getElementById('status');
        const sceneEl = document.getElementById('scene');
        const countEl = document.getElementById('count');
        const resultEl = document.getElementById('result');
        let eventCount = 0;
        let ws = null;
        let reconnectTimer = null;

        function formatTime(ts) {
            try {
                const d = new Date(ts);
                return d.toLocaleTimeString('en-US', { hour12: false });
            } catch {
                return ts;
            }
        }

        function getScope(name) {
            const parts = name.split('.');
            return parts[0] || '';
        }

        function renderEvent(e) {
            const div = document.createElement('div');
            div.className = 'event level-' + e.level + ' scope-' + getScope(e.event);

            div.innerHTML =
                '<span class="ts">' + formatTime(e.ts) + '</span>' +
                '<span class="name">' + e.event + '</span>' +
                (e.msg ? '<span class="msg">' + e.msg + '</span>' : '');

            eventsDiv.appendChild(div);
            eventCount++;
            countEl.textContent = eventCount;

            if (e.event === 'scene.entered' && e.fields && e.fields.scene) {
                sceneEl.textContent = 'scene ' + e.fields.scene;
            }

            eventsDiv.scrollTop = eventsDiv.scrollHeight;

            while (eventsDiv.children.length > 500) {
                eventsDiv.removeChild(eventsDiv.firstChild);
            }
        }

        function setStatus(status) {
            statusEl.className = status;
            statusEl.textContent = status.charAt(0).toUpperCase() + status.slice(1);
        }

        function connect() {
            if (ws && ws.readyState === WebSocket.OPEN) return;

            setStatus('connecting');

            const protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
            ws = new WebSocket(protocol + '//' + location.host + '/ws/events');

            ws.onopen = function() {
                setStatus('connected');
                if (reconnectTimer) {
                    clearTimeout(reconnectTimer);
                    reconnectTimer = null;
                }
            };

            ws.onmessage = function(msg) {
                try {
                    const e = JSON.parse(msg.data);
                    renderEvent(e);
                } catch (err) {
                    console.error('Failed to parse event:', err);
                }
            };

            ws.onclose = function() {
                setStatus('disconnected');
                scheduleReconnect();
            };

            ws.onerror = function(err) {
                console.error('WebSocket error:', err);
                ws.close();
            };
        }

        function scheduleReconnect() {
            if (reconnectTimer) return;
            reconnectTimer = setTimeout(function() {
                reconnectTimer = null;
                connect();
            }, 3000);
        }

        connect();

        function showResult(success, message) {
            resultEl.className = success ? 'success' : 'error';
            resultEl.textContent = message;
            setTimeout(function() {
                resultEl.className = '';
                resultEl.textContent = '';
            }, 5000);
        }

        function post(path, body) {
            fetch(path, {
                method: 'POST',
                headers: { 'Content-Type': 'application/json' },
                body: JSON.stringify(body || {})
            })
            .then(function(res) { return res.json(); })
            .then(function(data) {
                if (!data.ok) showResult(false, data.error || 'request failed');
            })
            .catch(function() {
                showResult(false, 'Network error');
            });
        }

        function trigger(name) {
            post('/session/trigger', { trigger: name });
        }

        function reply() {
            const input = document.getElementById('replyText');
            const text = input.value.trim();
            if (!text) {
                showResult(false, 'Enter a question');
                return;
            }
            post('/session/reply', { text: text });
            input.value = '';
        }

        document.getElementById('replyText').addEventListener('keypress', function(e) {
            if (e.key === 'Enter') reply();
        });
    </script>
</body>
</html>`

// uiHandler serves the operator UI HTML page.
func uiHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(operatorUIHTML))
}
